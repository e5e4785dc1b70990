package consolelog

import (
	"context"
	"testing"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChromeSource_Events(t *testing.T) {
	s := newChromeSource(zap.NewNop(), 10)

	s.handleEvent(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeError,
		Args: []*runtime.RemoteObject{
			{Type: runtime.TypeString, Value: []byte(`"real crash"`)},
			{Type: runtime.TypeNumber, Value: []byte(`42`)},
		},
	})
	s.handleEvent(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeWarning,
		Args: []*runtime.RemoteObject{{Type: runtime.TypeString, Value: []byte(`"careful"`)}},
		StackTrace: &runtime.StackTrace{CallFrames: []*runtime.CallFrame{
			{URL: "http://localhost/app.js", LineNumber: 9, ColumnNumber: 4},
		}},
	})
	s.handleEvent(&runtime.EventConsoleAPICalled{
		Type: runtime.APITypeLog,
		Args: []*runtime.RemoteObject{{Type: runtime.TypeNumber, UnserializableValue: "NaN"}},
	})
	s.handleEvent(&cdplog.EventEntryAdded{Entry: &cdplog.Entry{
		Source: cdplog.SourceNetwork,
		Level:  cdplog.LevelError,
		Text:   "Failed to load resource: 404",
		URL:    "http://localhost/favicon.ico",
	}})
	s.handleEvent(&cdplog.EventEntryAdded{Entry: &cdplog.Entry{Level: cdplog.LevelVerbose, Text: "violation"}})
	s.handleEvent(&runtime.EventExceptionThrown{ExceptionDetails: &runtime.ExceptionDetails{
		Text:      "Uncaught",
		Exception: &runtime.RemoteObject{Description: "TypeError: x is undefined"},
	}})
	// ignored
	s.handleEvent(&cdplog.EventEntryAdded{})
	s.handleEvent(&runtime.EventExecutionContextsCleared{})

	entries, err := s.GetLog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 6)

	assert.Equal(t, SevereName, entries[0].LevelName())
	assert.Equal(t, "real crash 42", entries[0].Message)
	assert.Equal(t, sourceConsoleAPI, entries[0].Source)

	assert.Equal(t, WarningName, entries[1].LevelName())
	assert.Equal(t, "http://localhost/app.js 10:5 careful", entries[1].Message)

	assert.Equal(t, InfoName, entries[2].LevelName())
	assert.Equal(t, "NaN", entries[2].Message)

	assert.Equal(t, SevereName, entries[3].LevelName())
	assert.Equal(t, "http://localhost/favicon.ico - Failed to load resource: 404", entries[3].Message)
	assert.Equal(t, "network", entries[3].Source)

	assert.Equal(t, DebugName, entries[4].LevelName())

	assert.Equal(t, SevereName, entries[5].LevelName())
	assert.Equal(t, "TypeError: x is undefined", entries[5].Message)
	assert.Equal(t, sourceJavascript, entries[5].Source)

	// drained
	entries, err = s.GetLog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChromeSource_Overflow(t *testing.T) {
	core, o := observer.New(zapcore.DebugLevel)
	s := newChromeSource(zap.New(core), 2)

	for _, m := range []string{"a", "b", "c"} {
		s.push(Entry{Level: LevelInfo, Message: m})
	}

	entries, err := s.GetLog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "c", entries[1].Message)
	assert.Equal(t, 1, o.FilterMessageSnippet("buffer overflow").Len())
}

func TestChromeSource_CanceledContext(t *testing.T) {
	s := newChromeSource(zap.NewNop(), 2)
	s.push(Entry{Level: LevelSevere, Message: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetLog(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// nothing lost
	entries, err := s.GetLog(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestChromeConfig_InitDefault(t *testing.T) {
	c := &ChromeConfig{}
	c.InitDefault()
	require.NotNil(t, c.Headless)
	assert.True(t, *c.Headless)
	assert.Equal(t, defaultBufferSize, c.BufferSize)

	c = &ChromeConfig{Headless: Bool(false), BufferSize: 5}
	c.InitDefault()
	assert.False(t, *c.Headless)
	assert.Equal(t, 5, c.BufferSize)
}
