package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) ListUsers(ctx context.Context, search string, page models.Page) ([]models.User, int, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Int(1), args.Error(2)
}

func (m *RepoMock) UpdateUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *RepoMock) DeleteUserByUsername(ctx context.Context, username string) ([]int64, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(ctx context.Context, titleID int64) {
	m.Called(ctx, titleID)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func strPtr(s string) *string { return &s }

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	page := models.NewPage(0, 0)
	repo.On("ListUsers", mock.Anything, "al", page).
		Return([]models.User{{Username: "alice"}}, 1, nil).Once()

	got, err := New(repo, new(InvalidatorMock), newNoopLogger()).List(context.Background(), "al", page)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "alice", got.Results[0].Username)
	repo.AssertExpectations(t)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		repoErr   error
		wantField string
		wantErr   bool
	}{
		{name: "success"},
		{
			name:      "duplicate username",
			repoErr:   &repository.ConstraintError{Err: repository.ErrAlreadyExists, Constraint: repository.ConstraintUsername},
			wantField: "username",
		},
		{
			name:      "duplicate email",
			repoErr:   &repository.ConstraintError{Err: repository.ErrAlreadyExists, Constraint: repository.ConstraintEmail},
			wantField: "email",
		},
		{name: "storage failure", repoErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
				return u.Username == "bob" && u.Role == models.RoleUser
			})).Return(int64(3), tt.repoErr).Once()

			got, err := New(repo, new(InvalidatorMock), newNoopLogger()).Create(context.Background(),
				models.User{Username: "bob", Email: "bob@example.com"})

			switch {
			case tt.wantField != "":
				var verr *svcerr.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.Fields, tt.wantField)
			case tt.wantErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(3), got.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Update(t *testing.T) {
	repo := new(RepoMock)
	role := models.RoleModerator
	repo.On("GetUserByUsername", mock.Anything, "bob").
		Return(&models.User{ID: 3, Username: "bob", Role: models.RoleUser}, nil).Once()
	repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.ID == 3 && u.Role == models.RoleModerator && u.Bio == "hi"
	})).Return(nil).Once()

	got, err := New(repo, new(InvalidatorMock), newNoopLogger()).Update(context.Background(), "bob",
		models.UserPatch{Bio: strPtr("hi"), Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, got.Role)
	repo.AssertExpectations(t)
}

func TestService_UpdateMeIgnoresRole(t *testing.T) {
	repo := new(RepoMock)
	role := models.RoleAdmin
	repo.On("GetUserByID", mock.Anything, int64(3)).
		Return(&models.User{ID: 3, Username: "bob", Role: models.RoleUser}, nil).Once()
	repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleUser && u.FirstName == "Bob"
	})).Return(nil).Once()

	actor := &models.Actor{UserID: 3, Username: "bob", Role: models.RoleUser}
	got, err := New(repo, new(InvalidatorMock), newNoopLogger()).UpdateMe(context.Background(), actor,
		models.UserPatch{FirstName: strPtr("Bob"), Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
	repo.AssertExpectations(t)
}

func TestService_NotFound(t *testing.T) {
	repo := new(RepoMock)
	repo.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()
	repo.On("DeleteUserByUsername", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()
	s := New(repo, new(InvalidatorMock), newNoopLogger())

	_, err := s.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, svcerr.ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "ghost"), svcerr.ErrNotFound)

	_, err = s.Me(context.Background(), nil)
	assert.ErrorIs(t, err, svcerr.ErrForbidden)
	repo.AssertExpectations(t)
}

func TestService_DeleteInvalidatesReviewedTitles(t *testing.T) {
	repo := new(RepoMock)
	inv := new(InvalidatorMock)
	repo.On("DeleteUserByUsername", mock.Anything, "alice").Return([]int64{3, 7}, nil).Once()
	inv.On("Invalidate", mock.Anything, int64(3)).Once()
	inv.On("Invalidate", mock.Anything, int64(7)).Once()

	require.NoError(t, New(repo, inv, newNoopLogger()).Delete(context.Background(), "alice"))
	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
}
