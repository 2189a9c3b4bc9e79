package users

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/yamdb/internal/http/middlewarectx"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, search string, page models.Page) (models.List[models.User], error) {
	args := m.Called(ctx, search, page)
	return args.Get(0).(models.List[models.User]), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, username string, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, username, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *MockService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockService) UpdateMe(ctx context.Context, actor *models.Actor, patch models.UserPatch) (*models.User, error) {
	args := m.Called(ctx, actor, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func withUsername(req *http.Request, username string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("username", username)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var alice = &models.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: models.RoleUser}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, "ali", models.Page{Limit: 5, Offset: 10}).
		Return(models.NewList([]models.User{*alice}, 11), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?search=ali&limit=5&offset=10", nil)
	w := httptest.NewRecorder()
	New(newNoopLogger(), svc).List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":11`)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "confirmation_code")
	svc.AssertExpectations(t)
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success with role",
			body: `{"username":"mod","email":"mod@example.com","role":"moderator"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, models.User{Username: "mod", Email: "mod@example.com", Role: models.RoleModerator}).
					Return(&models.User{ID: 2, Username: "mod", Email: "mod@example.com", Role: models.RoleModerator}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"role":"moderator"`,
		},
		{
			name:           "unknown role",
			body:           `{"username":"mod","email":"mod@example.com","role":"god"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"role":["\"god\" is not a valid choice."]`,
		},
		{
			name: "duplicate username",
			body: `{"username":"alice","email":"other@example.com"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, svcerr.NewValidationError("username", "A user with that username already exists.")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"username":["A user with that username already exists."]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			New(newNoopLogger(), svc).Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	t.Run("get missing user", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Get", mock.Anything, "ghost").Return(nil, svcerr.ErrNotFound).Once()

		w := httptest.NewRecorder()
		New(newNoopLogger(), svc).Get(w, withUsername(httptest.NewRequest(http.MethodGet, "/", nil), "ghost"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("patch role", func(t *testing.T) {
		svc := new(MockService)
		role := models.RoleModerator
		svc.On("Update", mock.Anything, "alice", models.UserPatch{Role: &role}).
			Return(&models.User{Username: "alice", Role: role}, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"role":"moderator"}`))
		w := httptest.NewRecorder()
		New(newNoopLogger(), svc).Update(w, withUsername(req, "alice"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"moderator"`)
		svc.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Delete", mock.Anything, "alice").Return(nil).Once()

		w := httptest.NewRecorder()
		New(newNoopLogger(), svc).Delete(w, withUsername(httptest.NewRequest(http.MethodDelete, "/", nil), "alice"))

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})
}

func TestHandler_Me(t *testing.T) {
	actor := &models.Actor{UserID: 1, Username: "alice", Role: models.RoleUser}

	t.Run("get", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Me", mock.Anything, actor).Return(alice, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req = req.WithContext(middlewarectx.WithActor(req.Context(), actor))
		w := httptest.NewRecorder()
		New(newNoopLogger(), svc).Me(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
		svc.AssertExpectations(t)
	})

	t.Run("patch passes bio", func(t *testing.T) {
		svc := new(MockService)
		bio := "reader"
		role := models.RoleAdmin
		svc.On("UpdateMe", mock.Anything, actor, models.UserPatch{Bio: &bio, Role: &role}).
			Return(&models.User{Username: "alice", Bio: bio, Role: models.RoleUser}, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(`{"bio":"reader","role":"admin"}`))
		req = req.WithContext(middlewarectx.WithActor(req.Context(), actor))
		w := httptest.NewRecorder()
		New(newNoopLogger(), svc).UpdateMe(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"user"`)
		svc.AssertExpectations(t)
	})
}
