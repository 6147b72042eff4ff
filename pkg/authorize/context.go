package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext extracts the GroupSubject (user ID) stored by the auth
// middleware through reqctx.WithClaims.
func SubjectFromContext(ctx context.Context) (GroupSubject, error) {
	id, err := UserIDFromContext(ctx)
	if err != nil {
		return "", err
	}
	return GroupSubject(id.String()), nil
}

// UserIDFromContext extracts the user ID as uuid.UUID from context.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	userID := claims.GetUserID()
	if userID == uuid.Nil {
		return uuid.Nil, ErrNoSubjectInContext
	}
	return userID, nil
}

// DomainFromContext returns the private user:<uuid> domain of the caller.
func DomainFromContext(ctx context.Context) (Domain, error) {
	subject, err := SubjectFromContext(ctx)
	if err != nil {
		return "", err
	}
	return UserDomain(string(subject)), nil
}
