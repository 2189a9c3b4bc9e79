package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{name: "local", env: sl.EnvLocal, wantJSON: false, wantDebug: true},
		{name: "dev", env: sl.EnvDev, wantJSON: true, wantDebug: true},
		{name: "prod", env: sl.EnvProd, wantJSON: true, wantDebug: false},
		{name: "unknown falls back to prod", env: "staging", wantJSON: true, wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := sl.NewLogger(&buf, tt.env)

			log.Debug("debug line")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)

			buf.Reset()
			log.Info("info line", sl.Err(errors.New("boom")))
			if tt.wantJSON {
				var entry map[string]any
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "info line", entry["msg"])
				assert.Equal(t, "boom", entry["error"])
			} else {
				assert.Contains(t, buf.String(), "msg=\"info line\"")
				assert.Contains(t, buf.String(), "error=boom")
			}
		})
	}
}
