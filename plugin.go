package console

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roadrunner-server/console/v5/consolelog"
	"github.com/roadrunner-server/console/v5/kafkasink"
	"github.com/roadrunner-server/endure/v2/dep"
	"github.com/roadrunner-server/errors"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	pluginName string = "console"
)

type Plugin struct {
	mu     sync.Mutex
	log    *zap.Logger
	cfg    *Config
	runID  string
	tracer *sdktrace.TracerProvider
	// the provider was created by the plugin, not collected
	ownTracer bool

	source  consolelog.Source
	chrome  *consolelog.ChromeSource
	auditor *consolelog.Auditor
	sink    *kafkasink.Sink
	server  *http.Server

	// accumulated over all teardowns of this run
	run *consolelog.Report
}

type Logger interface {
	NamedLogger(name string) *zap.Logger
}

type Configurer interface {
	// UnmarshalKey takes a single key and unmarshal it into a Struct.
	UnmarshalKey(name string, out any) error
	// Has checks if config section exists.
	Has(name string) bool
}

// Source is a plugin supplying the browser log.
type Source interface {
	GetLog(ctx context.Context) ([]consolelog.Entry, error)
}

type Tracer interface {
	Tracer() *sdktrace.TracerProvider
}

func (p *Plugin) Init(log Logger, cfg Configurer) error {
	const op = errors.Op("console_plugin_init")

	if !cfg.Has(pluginName) {
		return errors.E(op, errors.Disabled)
	}

	p.cfg = &Config{}
	err := cfg.UnmarshalKey(pluginName, p.cfg)
	if err != nil {
		return errors.E(op, err)
	}

	err = p.cfg.InitDefault()
	if err != nil {
		return errors.E(op, err)
	}

	p.log = log.NamedLogger(pluginName)
	p.runID = uuid.NewString()
	p.run = consolelog.NewReport()

	return nil
}

func (p *Plugin) Serve() chan error {
	const op = errors.Op("console_plugin_serve")
	errCh := make(chan error, 1)
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tracer == nil {
		p.tracer = sdktrace.NewTracerProvider()
		p.ownTracer = true
	}

	if p.source == nil {
		if p.cfg.Chrome == nil {
			errCh <- errors.E(op, errors.Str("no browser log source: register a source plugin or configure console.chrome"))
			return errCh
		}

		chrome, err := consolelog.NewChromeSource(context.Background(), p.log, p.cfg.Chrome)
		if err != nil {
			errCh <- errors.E(op, err)
			return errCh
		}

		p.chrome = chrome
		p.source = chrome
	}

	opts := []consolelog.AuditorOption{consolelog.WithTracerProvider(p.tracer)}
	if p.cfg.LegacyMerge {
		opts = append(opts, consolelog.WithLegacyMerge())
	}
	p.auditor = consolelog.NewAuditor(p.log, p.source, opts...)

	if p.cfg.Kafka != nil {
		sink, err := kafkasink.New(context.Background(), p.log, p.cfg.Kafka, p.tracer)
		if err != nil {
			errCh <- errors.E(op, err)
			return errCh
		}
		p.sink = sink
	}

	if p.cfg.Report.Address != "" {
		p.server = &http.Server{
			Addr:              p.cfg.Report.Address,
			Handler:           p.router(),
			ReadHeaderTimeout: time.Minute,
		}

		go func() {
			err := p.server.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				errCh <- errors.E(op, err)
			}
		}()
	}

	p.log.Debug("console auditor was started", zap.String("run", p.runID), zap.Bool("kafka", p.sink != nil), zap.String("report_address", p.cfg.Report.Address), zap.Time("start", start), zap.Duration("elapsed", time.Since(start)))
	return errCh
}

func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// later teardowns report "not serving"
	p.auditor = nil

	if p.server != nil {
		err := p.server.Shutdown(ctx)
		if err != nil {
			p.log.Error("report server shutdown", zap.Error(err))
		}
	}

	if p.sink != nil {
		p.sink.Stop()
	}

	if p.chrome != nil {
		p.chrome.Stop()
	}

	if p.ownTracer && p.tracer != nil {
		err := p.tracer.Shutdown(ctx)
		if err != nil {
			p.log.Error("tracer provider shutdown", zap.Error(err))
		}
		p.tracer = nil
		p.ownTracer = false
	}

	if p.run != nil {
		p.log.Debug("console auditor was stopped", zap.String("run", p.runID), zap.Int("failed", p.run.FailedCount), zap.Int("results", len(p.run.SpecResults)))
	}

	return nil
}

// Teardown audits the browser log of the finished test. Nil opts means the configured
// options. The returned report is a snapshot of the whole run.
func (p *Plugin) Teardown(ctx context.Context, opts *consolelog.Options) (*consolelog.Report, error) {
	const op = errors.Op("console_plugin_teardown")

	p.mu.Lock()
	auditor, tracer, sink := p.auditor, p.tracer, p.sink
	p.mu.Unlock()

	if auditor == nil {
		return nil, errors.E(op, errors.Str("console plugin is not serving"))
	}

	if opts == nil {
		opts = p.cfg.options()
	}

	ctx, span := tracer.Tracer(pluginName).Start(ctx, "console_teardown", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	rep, err := auditor.Audit(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit")
		return nil, err
	}

	p.mu.Lock()
	p.run.Merge(rep)
	snapshot := p.run.Copy()
	p.mu.Unlock()

	if sink != nil && !rep.Empty() {
		err = sink.Publish(ctx, p.runID, rep)
		if err != nil {
			p.log.Error("failed to publish the console report", zap.String("run", p.runID), zap.Error(err))
		}
	}

	return snapshot, nil
}

// Report returns a snapshot of the run report.
func (p *Plugin) Report() *consolelog.Report {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run == nil {
		return consolelog.NewReport()
	}
	return p.run.Copy()
}

// RunID identifies the test run in logs and published records.
func (p *Plugin) RunID() string {
	return p.runID
}

func (p *Plugin) Collects() []*dep.In {
	return []*dep.In{
		dep.Fits(func(pp any) {
			p.mu.Lock()
			defer p.mu.Unlock()
			// first source wins
			if p.source == nil {
				p.source = pp.(Source)
			}
		}, (*Source)(nil)),
		dep.Fits(func(pp any) {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.tracer = pp.(Tracer).Tracer()
		}, (*Tracer)(nil)),
	}
}

func (p *Plugin) Name() string {
	return pluginName
}

func (p *Plugin) Weight() uint {
	return 10
}
