package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  zapcore.Level
	}{
		{env: "production", level: "info", want: zapcore.InfoLevel},
		{env: "development", level: "debug", want: zapcore.DebugLevel},
		{env: "production", level: "WARN", want: zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			log, err := New(tt.env, tt.level)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			assert.False(t, log.Core().Enabled(tt.want-1))
		})
	}

	_, err := New("production", "loud")
	assert.Error(t, err)
}
