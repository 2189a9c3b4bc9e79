package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/http/request"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "service validation",
			err:        fmt.Errorf("op: %w", svcerr.NewValidationError("slug", "taken")),
			wantStatus: http.StatusBadRequest,
			wantError:  msgValidation,
			wantField:  "slug",
		},
		{
			name:       "bad body",
			err:        fmt.Errorf("%w: eof", request.ErrInvalidBody),
			wantStatus: http.StatusBadRequest,
			wantError:  msgInvalidBody,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("op: %w", svcerr.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  msgNotFound,
		},
		{
			name:       "bad path id",
			err:        request.ErrInvalidParam,
			wantStatus: http.StatusNotFound,
			wantError:  msgNotFound,
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("op: %w", svcerr.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantError:  svcerr.ErrForbidden.Error(),
		},
		{
			name:       "unexpected",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  msgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			RenderError(w, req, newNoopLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var got Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, StatusError, got.Status)
			assert.Equal(t, tt.wantError, got.Error)
			if tt.wantField != "" {
				assert.Contains(t, got.Fields, tt.wantField)
			}
		})
	}
}

func TestStatusOKWithData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Render(w, req, http.StatusCreated, StatusOKWithData(map[string]string{"slug": "books"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"slug":"books"}}`, w.Body.String())
}
