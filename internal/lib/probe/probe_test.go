package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProbe_Check(t *testing.T) {
	ok := Func(func(context.Context) error { return nil })
	down := Func(func(context.Context) error { return errors.New("connection refused") })
	slow := Func(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	tests := []struct {
		name        string
		pingers     map[string]Pinger
		wantStatus  map[string]string
		wantHealthy bool
	}{
		{
			name:        "all up",
			pingers:     map[string]Pinger{"postgres": ok, "redis": ok},
			wantStatus:  map[string]string{"postgres": StatusOK, "redis": StatusOK},
			wantHealthy: true,
		},
		{
			name:        "one down",
			pingers:     map[string]Pinger{"postgres": ok, "redis": down},
			wantStatus:  map[string]string{"postgres": StatusOK, "redis": StatusDown},
			wantHealthy: false,
		},
		{
			name:        "timeout counts as down",
			pingers:     map[string]Pinger{"rabbitmq": slow},
			wantStatus:  map[string]string{"rabbitmq": StatusDown},
			wantHealthy: false,
		},
		{
			name:        "nothing registered",
			pingers:     map[string]Pinger{},
			wantStatus:  map[string]string{},
			wantHealthy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(20 * time.Millisecond)
			for name, pinger := range tt.pingers {
				p.Add(name, pinger)
			}
			statuses, healthy := p.Check(context.Background())
			assert.Equal(t, tt.wantStatus, statuses)
			assert.Equal(t, tt.wantHealthy, healthy)
		})
	}
}
