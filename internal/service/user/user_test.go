package user

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/sapan_backend/internal/repo"
)

type memUsers struct {
	users map[uuid.UUID]*repo.User
}

func (m *memUsers) Get(_ context.Context, id uuid.UUID) (*repo.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(ctx context.Context, id uuid.UUID, in repo.UserUpdate) (*repo.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &repo.NotFoundError{}
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	return m.Get(ctx, id)
}

func (m *memUsers) SetUserType(_ context.Context, id uuid.UUID, t repo.UserType) (bool, error) {
	u := m.users[id]
	if u.UserType != repo.UserTypeNone {
		return false, nil
	}
	u.UserType = t
	u.IsProfileComplete = true
	u.IsApproved = t == repo.UserTypeFounder
	return true, nil
}

func (m *memUsers) SetApproved(_ context.Context, id uuid.UUID, approved bool) error {
	m.users[id].IsApproved = approved
	return nil
}

func (m *memUsers) SetProfilePhoto(_ context.Context, id uuid.UUID, key string) error {
	m.users[id].ProfilePhotoKey = key
	return nil
}

type mockRoles struct{ mock.Mock }

func (m *mockRoles) AssignMember(ctx context.Context, userID uuid.UUID, userType string) error {
	return m.Called(ctx, userID, userType).Error(0)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	return m.Called(ctx, key, contentType, body, size).Error(0)
}

func (m *mockStorage) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newUsers(us ...*repo.User) *memUsers {
	m := &memUsers{users: map[uuid.UUID]*repo.User{}}
	for _, u := range us {
		m.users[u.ID] = u
	}
	return m
}

func strp(s string) *string { return &s }

func TestCompleteProfile(t *testing.T) {
	ctx := context.Background()
	u := &repo.User{ID: uuid.New(), Email: "m@x.io"}
	roles := new(mockRoles)
	roles.On("AssignMember", mock.Anything, u.ID, "mentor").Return(nil).Once()
	svc := New(newUsers(u), roles, nil)

	_, err := svc.CompleteProfile(ctx, u.ID, "admin")
	assert.ErrorIs(t, err, ErrInvalidUserType)

	me, err := svc.CompleteProfile(ctx, u.ID, repo.UserTypeMentor)
	require.NoError(t, err)
	assert.Equal(t, repo.UserTypeMentor, me.UserType)
	assert.True(t, me.IsProfileComplete)
	assert.False(t, me.IsApproved)

	_, err = svc.CompleteProfile(ctx, u.ID, repo.UserTypeFounder)
	assert.ErrorIs(t, err, ErrUserTypeAlreadySet)
	roles.AssertExpectations(t)
}

func TestCompleteProfile_FounderApproved(t *testing.T) {
	u := &repo.User{ID: uuid.New()}
	roles := new(mockRoles)
	roles.On("AssignMember", mock.Anything, u.ID, "founder").Return(nil)
	svc := New(newUsers(u), roles, nil)

	me, err := svc.CompleteProfile(context.Background(), u.ID, repo.UserTypeFounder)
	require.NoError(t, err)
	assert.True(t, me.IsApproved)
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()
	u := &repo.User{ID: uuid.New(), FirstName: "Sarah", LastName: "Chen"}
	svc := New(newUsers(u), new(mockRoles), nil)

	me, err := svc.UpdateMe(ctx, u.ID, UpdateRequest{Bio: strp("  Ex-founder.  "), AvatarURL: strp("https://cdn.example/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Ex-founder.", me.Bio)
	assert.Equal(t, "Sarah", me.FirstName)

	_, err = svc.UpdateMe(ctx, u.ID, UpdateRequest{AvatarURL: strp("not a url")})
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = svc.UpdateMe(ctx, u.ID, UpdateRequest{FirstName: strp(strings.Repeat("a", 101))})
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.UpdateMe(ctx, uuid.New(), UpdateRequest{Bio: strp("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUploadPhoto(t *testing.T) {
	ctx := context.Background()
	u := &repo.User{ID: uuid.New(), ProfilePhotoKey: "profile-photos/old.png"}
	users := newUsers(u)
	store := new(mockStorage)
	svc := New(users, new(mockRoles), store)

	body := bytes.NewReader([]byte("\x89PNG"))
	store.On("Upload", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "profile-photos/"+u.ID.String()+"/") && strings.HasSuffix(k, ".png")
	}), "image/png", body, int64(4)).Return(nil).Once()
	store.On("Delete", mock.Anything, "profile-photos/old.png").Return(nil).Once()
	store.On("PresignDownload", mock.Anything, mock.Anything).Return("https://s3/signed", nil).Once()

	link, err := svc.UploadPhoto(ctx, u.ID, Photo{Filename: "me.png", ContentType: "image/png", Size: 4, Body: body})
	require.NoError(t, err)
	assert.Equal(t, "https://s3/signed", link)
	assert.NotEqual(t, "profile-photos/old.png", users.users[u.ID].ProfilePhotoKey)
	store.AssertExpectations(t)
}

func TestUploadPhoto_Rejects(t *testing.T) {
	ctx := context.Background()
	u := &repo.User{ID: uuid.New()}
	store := new(mockStorage)
	svc := New(newUsers(u), new(mockRoles), store)

	_, err := svc.UploadPhoto(ctx, u.ID, Photo{ContentType: "image/png", Size: MaxPhotoBytes + 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrPhotoTooLarge)

	_, err = svc.UploadPhoto(ctx, u.ID, Photo{ContentType: "image/gif", Size: 10, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrPhotoType)

	_, err = svc.UploadPhoto(ctx, u.ID, Photo{ContentType: "image/png"})
	assert.ErrorIs(t, err, ErrPhotoRequired)

	_, err = New(newUsers(u), new(mockRoles), nil).UploadPhoto(ctx, u.ID, Photo{ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrStorageDisabled)
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveMentor(t *testing.T) {
	ctx := context.Background()
	mentor := &repo.User{ID: uuid.New(), UserType: repo.UserTypeMentor}
	founder := &repo.User{ID: uuid.New(), UserType: repo.UserTypeFounder, IsApproved: true}
	users := newUsers(mentor, founder)
	svc := New(users, new(mockRoles), nil)

	u, err := svc.ApproveMentor(ctx, mentor.ID)
	require.NoError(t, err)
	assert.True(t, u.IsApproved)
	assert.True(t, users.users[mentor.ID].IsApproved)

	_, err = svc.ApproveMentor(ctx, founder.ID)
	assert.ErrorIs(t, err, ErrNotMentor)
	_, err = svc.ApproveMentor(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
