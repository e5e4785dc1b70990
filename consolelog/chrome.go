package consolelog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/goccy/go-json"
	"github.com/roadrunner-server/errors"
	"go.uber.org/zap"
)

const (
	sourceConsoleAPI string = "console-api"
	sourceJavascript string = "javascript"

	defaultBufferSize int = 1000
)

// ChromeConfig describes how to reach the browser.
type ChromeConfig struct {
	// RemoteURL is the DevTools websocket URL of a running browser. Takes precedence over ExecPath.
	RemoteURL string `mapstructure:"remote_url"`
	// ExecPath of the Chrome binary to launch, empty means the chromedp lookup.
	ExecPath string `mapstructure:"exec_path"`
	// Headless, default true
	Headless *bool `mapstructure:"headless"`
	// BufferSize caps buffered entries between two GetLog calls, oldest are dropped.
	BufferSize int `mapstructure:"buffer_size"`
}

func (c *ChromeConfig) InitDefault() {
	if c.Headless == nil {
		c.Headless = Bool(true)
	}

	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
}

// ChromeSource collects the browser console through the DevTools protocol.
type ChromeSource struct {
	mu      sync.Mutex
	log     *zap.Logger
	entries []Entry
	size    int
	dropped uint64

	ctx     context.Context
	cancels []context.CancelFunc
}

// NewChromeSource allocates a browser (remote or local) according to cfg and starts
// listening to its console.
func NewChromeSource(ctx context.Context, log *zap.Logger, cfg *ChromeConfig) (*ChromeSource, error) {
	const op = errors.Op("console_chrome_source")
	cfg.InitDefault()

	var allocCtx context.Context
	var cancelAlloc context.CancelFunc
	if cfg.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], //nolint:gocritic
			chromedp.Flag("headless", *cfg.Headless),
			chromedp.Flag("disable-gpu", true),
		)
		if cfg.ExecPath != "" {
			allocOpts = append(allocOpts, chromedp.ExecPath(cfg.ExecPath))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocOpts...)
	}

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s, err := attach(tabCtx, log, cfg.BufferSize)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, errors.E(op, err)
	}

	s.cancels = append(s.cancels, cancelTab, cancelAlloc)
	return s, nil
}

// AttachChrome listens to the console of a chromedp context owned by the caller,
// e.g. the tab the tests are driving. Stop does not close the caller's browser.
func AttachChrome(ctx context.Context, log *zap.Logger, bufferSize int) (*ChromeSource, error) {
	const op = errors.Op("console_chrome_attach")
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	s, err := attach(ctx, log, bufferSize)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return s, nil
}

func attach(ctx context.Context, log *zap.Logger, size int) (*ChromeSource, error) {
	s := newChromeSource(log, size)
	s.ctx = ctx

	chromedp.ListenTarget(ctx, s.handleEvent)

	err := chromedp.Run(ctx, cdplog.Enable(), runtime.Enable())
	if err != nil {
		return nil, err
	}

	return s, nil
}

func newChromeSource(log *zap.Logger, size int) *ChromeSource {
	return &ChromeSource{
		log:     log,
		size:    size,
		entries: make([]Entry, 0, 16),
	}
}

// Context returns the chromedp context the source listens to.
func (s *ChromeSource) Context() context.Context {
	return s.ctx
}

// GetLog drains the buffered entries.
func (s *ChromeSource) GetLog(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dropped > 0 {
		s.log.Warn("browser log buffer overflow, oldest entries were dropped", zap.Uint64("dropped", s.dropped), zap.Int("buffer_size", s.size))
		s.dropped = 0
	}

	out := s.entries
	s.entries = make([]Entry, 0, 16)
	return out, nil
}

// Stop releases the browser if the source allocated it.
func (s *ChromeSource) Stop() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	s.cancels = nil
}

// handleEvent is called on the chromedp event loop, it must not block.
func (s *ChromeSource) handleEvent(ev any) {
	var e Entry
	switch ev := ev.(type) {
	case *cdplog.EventEntryAdded:
		if ev.Entry == nil {
			return
		}
		e = fromLogEntry(ev.Entry)
	case *runtime.EventConsoleAPICalled:
		e = fromConsoleCall(ev)
	case *runtime.EventExceptionThrown:
		e = fromException(ev)
	default:
		return
	}

	s.push(e)
}

func (s *ChromeSource) push(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.size {
		s.entries = s.entries[1:]
		s.dropped++
	}
	s.entries = append(s.entries, e)
}

func fromLogEntry(le *cdplog.Entry) Entry {
	msg := le.Text
	if le.URL != "" {
		msg = fmt.Sprintf("%s - %s", le.URL, le.Text)
	}

	return Entry{
		Level:     logLevel(le.Level),
		Message:   msg,
		Source:    string(le.Source),
		Timestamp: timestamp(le.Timestamp),
	}
}

func fromConsoleCall(ev *runtime.EventConsoleAPICalled) Entry {
	parts := make([]string, 0, len(ev.Args))
	for _, arg := range ev.Args {
		parts = append(parts, remoteValue(arg))
	}
	msg := strings.Join(parts, " ")

	if ev.StackTrace != nil && len(ev.StackTrace.CallFrames) > 0 {
		f := ev.StackTrace.CallFrames[0]
		msg = fmt.Sprintf("%s %d:%d %s", f.URL, f.LineNumber+1, f.ColumnNumber+1, msg)
	}

	return Entry{
		Level:     consoleLevel(ev.Type),
		Message:   msg,
		Source:    sourceConsoleAPI,
		Timestamp: timestamp(ev.Timestamp),
	}
}

func fromException(ev *runtime.EventExceptionThrown) Entry {
	var msg string
	if d := ev.ExceptionDetails; d != nil {
		msg = d.Text
		if d.Exception != nil && d.Exception.Description != "" {
			msg = d.Exception.Description
		}
		if d.URL != "" {
			msg = fmt.Sprintf("%s %d:%d %s", d.URL, d.LineNumber+1, d.ColumnNumber+1, msg)
		}
	}

	return Entry{
		Level:     LevelSevere,
		Message:   msg,
		Source:    sourceJavascript,
		Timestamp: timestamp(ev.Timestamp),
	}
}

func logLevel(l cdplog.Level) *Level {
	switch l {
	case cdplog.LevelError:
		return LevelSevere
	case cdplog.LevelWarning:
		return LevelWarning
	case cdplog.LevelInfo:
		return LevelInfo
	case cdplog.LevelVerbose:
		return LevelDebug
	default:
		return nil
	}
}

func consoleLevel(t runtime.APIType) *Level {
	switch t {
	case runtime.APITypeError, runtime.APITypeAssert:
		return LevelSevere
	case runtime.APITypeWarning:
		return LevelWarning
	case runtime.APITypeDebug:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// remoteValue renders a console argument, strings without the JSON quotes.
func remoteValue(o *runtime.RemoteObject) string {
	if o == nil {
		return ""
	}

	if len(o.Value) > 0 {
		var s string
		if err := json.Unmarshal([]byte(o.Value), &s); err == nil {
			return s
		}
		return string(o.Value)
	}

	if o.UnserializableValue != "" {
		return string(o.UnserializableValue)
	}

	return o.Description
}

func timestamp(ts *runtime.Timestamp) time.Time {
	if ts == nil {
		return time.Now()
	}
	return ts.Time()
}
