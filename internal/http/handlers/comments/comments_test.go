package comments

import (
	"context"
	"fmt"
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

func (m *MockService) ListComments(ctx context.Context, titleID, reviewID int64, page models.Page) (models.List[models.Comment], error) {
	args := m.Called(ctx, titleID, reviewID, page)
	return args.Get(0).(models.List[models.Comment]), args.Error(1)
}

func (m *MockService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	args := m.Called(ctx, titleID, reviewID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockService) CreateComment(ctx context.Context, actor *models.Actor, titleID, reviewID int64,
	text string) (*models.Comment, error) {
	args := m.Called(ctx, actor, titleID, reviewID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockService) UpdateComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64,
	text *string) (*models.Comment, error) {
	args := m.Called(ctx, actor, titleID, reviewID, commentID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockService) DeleteComment(ctx context.Context, actor *models.Actor, titleID, reviewID, commentID int64) error {
	return m.Called(ctx, actor, titleID, reviewID, commentID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var bob = &models.Actor{UserID: 2, Username: "bob", Role: models.RoleUser}

func newRequest(method, body string, actor *models.Actor, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if actor != nil {
		ctx = middlewarectx.WithActor(ctx, actor)
	}
	return req.WithContext(ctx)
}

func TestHandler(t *testing.T) {
	reviewPath := map[string]string{"title_id": "5", "review_id": "1"}
	commentPath := map[string]string{"title_id": "5", "review_id": "1", "comment_id": "7"}

	tests := []struct {
		name           string
		call           func(h *Handler, w http.ResponseWriter)
		setupMock      func(m *MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "list",
			call: func(h *Handler, w http.ResponseWriter) {
				h.List(w, newRequest(http.MethodGet, "", nil, reviewPath))
			},
			setupMock: func(m *MockService) {
				m.On("ListComments", mock.Anything, int64(5), int64(1), models.NewPage(0, 0)).
					Return(models.NewList([]models.Comment{{ID: 7, Author: "bob", Text: "agree"}}, 1), nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name: "get with review of another title",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Get(w, newRequest(http.MethodGet, "", nil, commentPath))
			},
			setupMock: func(m *MockService) {
				m.On("GetComment", mock.Anything, int64(5), int64(1), int64(7)).
					Return(nil, fmt.Errorf("services.reviews.GetComment: %w", svcerr.ErrNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "create",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Create(w, newRequest(http.MethodPost, `{"text":"agree"}`, bob, reviewPath))
			},
			setupMock: func(m *MockService) {
				m.On("CreateComment", mock.Anything, bob, int64(5), int64(1), "agree").
					Return(&models.Comment{ID: 7, Author: "bob", Text: "agree"}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"text":"agree"`,
		},
		{
			name: "create with empty text",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Create(w, newRequest(http.MethodPost, `{"text":""}`, bob, reviewPath))
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "update forbidden",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Update(w, newRequest(http.MethodPatch, `{"text":"edited"}`, bob, commentPath))
			},
			setupMock: func(m *MockService) {
				m.On("UpdateComment", mock.Anything, bob, int64(5), int64(1), int64(7), mock.Anything).
					Return(nil, svcerr.ErrForbidden).Once()
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name: "bad comment id",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Delete(w, newRequest(http.MethodDelete, "", bob,
					map[string]string{"title_id": "5", "review_id": "1", "comment_id": "x"}))
			},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "delete",
			call: func(h *Handler, w http.ResponseWriter) {
				h.Delete(w, newRequest(http.MethodDelete, "", bob, commentPath))
			},
			setupMock: func(m *MockService) {
				m.On("DeleteComment", mock.Anything, bob, int64(5), int64(1), int64(7)).Return(nil).Once()
			},
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := httptest.NewRecorder()
			tt.call(New(newNoopLogger(), svc), w)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
