package kafkasink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Log(t *testing.T) {
	cases := []struct {
		name     string
		keyvals  []any
		expected []zapcore.Field
	}{
		{
			name:     "keyvals is nil",
			keyvals:  nil,
			expected: []zapcore.Field{},
		},
		{
			name:    "beginning sasl authentication",
			keyvals: []any{"broker", "b-name", "mechanism", "SCRAM-SHA-256", "authenticate", true},
			expected: []zapcore.Field{
				zap.String("broker", "b-name"),
				zap.String("mechanism", "SCRAM-SHA-256"),
				zap.Bool("authenticate", true),
			},
		},
		{
			name:    "not even",
			keyvals: []any{"one message"},
			expected: []zapcore.Field{
				zap.String("one message", "<missing>"),
			},
		},
		{
			name:    "no strings",
			keyvals: []any{0, "val1", 2, "val3"},
			expected: []zapcore.Field{
				zap.String("0", "val1"),
				zap.String("2", "val3"),
			},
		},
	}

	core, o := observer.New(zapcore.DebugLevel)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			newLogger(zap.New(core)).
				Log(kgo.LogLevelDebug, c.name, c.keyvals...)
			require.Equal(t, 1, o.Len())
			logs := o.TakeAll()
			assert.Equal(t, c.expected, logs[0].Context)
		})
	}
}

func TestLogger_Level(t *testing.T) {
	cases := []struct {
		zl       zapcore.Level
		expected kgo.LogLevel
	}{
		{zapcore.DebugLevel, kgo.LogLevelDebug},
		{zapcore.InfoLevel, kgo.LogLevelInfo},
		{zapcore.WarnLevel, kgo.LogLevelWarn},
		{zapcore.ErrorLevel, kgo.LogLevelError},
	}

	for _, c := range cases {
		core, _ := observer.New(c.zl)
		assert.Equal(t, c.expected, newLogger(zap.New(core)).Level(), c.zl.String())
	}
}

func TestLogger_Routing(t *testing.T) {
	core, o := observer.New(zapcore.DebugLevel)
	l := newLogger(zap.New(core))

	l.Log(kgo.LogLevelWarn, "warn")
	l.Log(kgo.LogLevelError, "err")
	l.Log(kgo.LogLevelInfo, "info")

	logs := o.TakeAll()
	require.Len(t, logs, 3)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
	assert.Equal(t, zapcore.InfoLevel, logs[2].Level)
}
