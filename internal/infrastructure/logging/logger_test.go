package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   zapcore.Level
		wantErr bool
	}{
		{"default", DefaultConfig(), zapcore.InfoLevel, false},
		{"development", DevelopmentConfig(), zapcore.DebugLevel, false},
		{"warn", Config{Level: "warn"}, zapcore.WarnLevel, false},
		{"bad level", Config{Level: "loud"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			assert.False(t, l.Core().Enabled(tt.level-1))
		})
	}
}

func TestNewFromSettings(t *testing.T) {
	assert.True(t, NewFromSettings("error", false).Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, NewFromSettings("error", false).Core().Enabled(zapcore.WarnLevel))

	// unparsable levels keep the mode default
	assert.True(t, NewFromSettings("nonsense", true).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewFromSettings("", false).Core().Enabled(zapcore.DebugLevel))
}

func TestSetLevel(t *testing.T) {
	l := NewFromSettings("info", false)
	child := l.Component("tree")
	require.False(t, child.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, l.SetLevel("debug"))
	assert.True(t, child.Core().Enabled(zapcore.DebugLevel), "children follow the parent level")
	assert.Error(t, l.SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, l.Level().Level())
}

func TestLevelHandler(t *testing.T) {
	l := NewFromSettings("info", false)

	w := httptest.NewRecorder()
	l.Level().ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/log/level", strings.NewReader(`{"level":"warn"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestNop(t *testing.T) {
	l := NewNop()
	assert.NotNil(t, l.Component("tree"))
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
