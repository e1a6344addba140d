package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/workforce-engine/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       logging.Config
		wantLevel zapcore.Level
	}{
		{"zero value", logging.Config{}, zapcore.InfoLevel},
		{"json debug", logging.Config{Level: "debug", Format: logging.FormatJSON}, zapcore.DebugLevel},
		{"console warn", logging.Config{Level: "warn", Format: logging.FormatConsole}, zapcore.WarnLevel},
		{"upper case format", logging.Config{Level: "error", Format: "CONSOLE"}, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := logging.New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = logging.New(logging.Config{Format: "xml"})
	assert.ErrorContains(t, err, "unknown log format")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logging.OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, logging.OrNop(l))
}
