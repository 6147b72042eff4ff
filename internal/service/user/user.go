package user

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
	"github.com/Alijeyrad/sapan_backend/pkg/reqctx"
	"github.com/Alijeyrad/sapan_backend/pkg/s3"
)

const (
	MaxPhotoBytes = 5 << 20
	maxNameLen    = 100
	maxBioLen     = 2000
)

var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*repo.User, error)
	Update(ctx context.Context, id uuid.UUID, in repo.UserUpdate) (*repo.User, error)
	SetUserType(ctx context.Context, id uuid.UUID, t repo.UserType) (bool, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) error
	SetProfilePhoto(ctx context.Context, id uuid.UUID, key string) error
}

type RoleAssigner interface {
	AssignMember(ctx context.Context, userID uuid.UUID, userType string) error
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Me is the caller's own account, with a short-lived photo link when a photo
// was uploaded.
type Me struct {
	*repo.User
	ProfilePhotoURL string `json:"profile_photo_url,omitempty"`
}

type UpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*Me, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Me, error)
	CompleteProfile(ctx context.Context, userID uuid.UUID, userType repo.UserType) (*Me, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, p Photo) (string, error)
	ApproveMentor(ctx context.Context, mentorID uuid.UUID) (*repo.User, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type userService struct {
	users   Store
	roles   RoleAssigner
	storage s3.Storage
}

// New builds the service. storage may be nil, in which case photo uploads
// fail with ErrStorageDisabled.
func New(users Store, roles RoleAssigner, storage s3.Storage) Service {
	return &userService{users: users, roles: roles, storage: storage}
}

func (s *userService) load(ctx context.Context, id uuid.UUID) (*repo.User, error) {
	u, err := s.users.Get(ctx, id)
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *userService) me(ctx context.Context, u *repo.User) *Me {
	out := &Me{User: u}
	if u.ProfilePhotoKey == "" || s.storage == nil {
		return out
	}
	link, err := s.storage.PresignDownload(ctx, u.ProfilePhotoKey)
	if err != nil {
		reqctx.Logger(ctx).Warn("presign profile photo failed", "user_id", u.ID, "error", err)
		return out
	}
	out.ProfilePhotoURL = link
	return out
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*Me, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.me(ctx, u), nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Me, error) {
	upd := repo.UserUpdate{
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
		Bio:       trimmed(req.Bio),
		AvatarURL: trimmed(req.AvatarURL),
	}
	for _, n := range []*string{upd.FirstName, upd.LastName} {
		if n != nil && utf8.RuneCountInString(*n) > maxNameLen {
			return nil, ErrInvalidName
		}
	}
	if upd.Bio != nil && utf8.RuneCountInString(*upd.Bio) > maxBioLen {
		return nil, ErrInvalidBio
	}
	if upd.AvatarURL != nil && *upd.AvatarURL != "" {
		if u, err := url.ParseRequestURI(*upd.AvatarURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, ErrInvalidURL
		}
	}

	if upd == (repo.UserUpdate{}) {
		return s.GetMe(ctx, userID)
	}
	u, err := s.users.Update(ctx, userID, upd)
	if repo.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.me(ctx, u), nil
}

// CompleteProfile fixes the user's type. It can be done once.
func (s *userService) CompleteProfile(ctx context.Context, userID uuid.UUID, userType repo.UserType) (*Me, error) {
	if !userType.Valid() {
		return nil, ErrInvalidUserType
	}
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	set, err := s.users.SetUserType(ctx, userID, userType)
	if err != nil {
		return nil, err
	}
	if !set {
		return nil, ErrUserTypeAlreadySet
	}
	if err := s.roles.AssignMember(ctx, userID, string(userType)); err != nil {
		return nil, fmt.Errorf("assign member role: %w", err)
	}
	reqctx.Logger(ctx).Info("profile completed", "user_id", userID, "user_type", userType)
	return s.GetMe(ctx, userID)
}

// UploadPhoto stores the image and returns a presigned link to it. A
// previous photo is removed best-effort.
func (s *userService) UploadPhoto(ctx context.Context, userID uuid.UUID, p Photo) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}
	if p.Body == nil || p.Size == 0 {
		return "", ErrPhotoRequired
	}
	if p.Size > MaxPhotoBytes {
		return "", ErrPhotoTooLarge
	}
	ct := strings.ToLower(strings.TrimSpace(p.ContentType))
	ext, ok := photoExt[ct]
	if !ok {
		return "", ErrPhotoType
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return "", err
	}

	key := s3.PhotoKey(userID, "photo"+ext)
	if err := s.storage.Upload(ctx, key, ct, p.Body, p.Size); err != nil {
		return "", err
	}
	if err := s.users.SetProfilePhoto(ctx, userID, key); err != nil {
		return "", fmt.Errorf("save photo key: %w", err)
	}
	if old := u.ProfilePhotoKey; old != "" && old != key {
		if err := s.storage.Delete(ctx, old); err != nil {
			reqctx.Logger(ctx).Warn("delete old profile photo failed", "key", old, "error", err)
		}
	}
	return s.storage.PresignDownload(ctx, key)
}

func (s *userService) ApproveMentor(ctx context.Context, mentorID uuid.UUID) (*repo.User, error) {
	u, err := s.load(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if u.UserType != repo.UserTypeMentor {
		return nil, ErrNotMentor
	}
	if u.IsApproved {
		return u, nil
	}
	if err := s.users.SetApproved(ctx, mentorID, true); err != nil {
		return nil, fmt.Errorf("approve mentor: %w", err)
	}
	u.IsApproved = true
	reqctx.Logger(ctx).Info("mentor approved", "mentor_id", mentorID)
	return u, nil
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
