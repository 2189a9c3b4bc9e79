package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/yamdb/internal/lib/probe"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHandler(t *testing.T) {
	up := probe.Func(func(context.Context) error { return nil })
	down := probe.Func(func(context.Context) error { return errors.New("dial tcp: refused") })

	tests := []struct {
		name           string
		redis          probe.Pinger
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "healthy",
			redis:          up,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:           "redis down",
			redis:          down,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `{"status":"Error","error":"service unavailable","data":{"postgres":"ok","redis":"down"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := probe.New(time.Second).Add("postgres", up).Add("redis", tt.redis)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			New(newNoopLogger(), p).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
