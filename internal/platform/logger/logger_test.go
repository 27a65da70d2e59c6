package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		env, level string
		want       zapcore.Level
	}{
		{"development", "debug", zapcore.DebugLevel},
		{"production", "warn", zapcore.WarnLevel},
		{"prod", "", zapcore.InfoLevel},
		{"development", "nonsense", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.env, tt.level)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tt.want), "%s/%s", tt.env, tt.level)
		if tt.want > zapcore.DebugLevel {
			assert.False(t, l.Core().Enabled(tt.want-1), "%s/%s", tt.env, tt.level)
		}
	}
}
