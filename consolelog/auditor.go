package consolelog

import (
	"context"
	"sync"
	"time"

	"github.com/roadrunner-server/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName string = "console"

type Auditor struct {
	mu     sync.Mutex
	log    *zap.Logger
	src    Source
	tracer trace.Tracer

	def    Policy
	legacy bool

	// current state, replaced by every Configure call
	policy Policy
	rules  []Rule
}

type AuditorOption func(a *Auditor)

// WithDefaults overrides the fallback policy used for flags the caller did not provide.
func WithDefaults(p Policy) AuditorOption {
	return func(a *Auditor) {
		a.def = p
	}
}

// WithLegacyMerge makes a provided false fall back to the default, so false can never
// switch off a flag that defaults to true.
func WithLegacyMerge() AuditorOption {
	return func(a *Auditor) {
		a.legacy = true
	}
}

func WithTracerProvider(tp trace.TracerProvider) AuditorOption {
	return func(a *Auditor) {
		if tp != nil {
			a.tracer = tp.Tracer(tracerName)
		}
	}
}

func NewAuditor(log *zap.Logger, src Source, opts ...AuditorOption) *Auditor {
	a := &Auditor{
		log:    log,
		src:    src,
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		def:    DefaultPolicy(),
	}

	for i := range opts {
		opts[i](a)
	}

	a.policy = a.def
	return a
}

// Configure resolves the fail policy and replaces the exclude rules.
// On error the previous state is kept.
func (a *Auditor) Configure(o *Options) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.configure(o)
}

func (a *Auditor) configure(o *Options) error {
	const op = errors.Op("console_configure")

	var exclude []string
	if o != nil {
		exclude = o.Exclude
	}

	rules, err := ParseRules(exclude)
	if err != nil {
		return errors.E(op, err)
	}

	a.policy = merge(o, a.def, a.legacy)
	a.rules = rules
	return nil
}

// Policy returns the policy resolved by the last Configure call.
func (a *Auditor) Policy() Policy {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.policy
}

// IsIncluded reports whether no exclude rule matches the message.
func (a *Auditor) IsIncluded(message string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return included(a.rules, message)
}

func included(rules []Rule, message string) bool {
	for i := range rules {
		if rules[i].Match(message) {
			return false
		}
	}
	return true
}

// Partition splits entries into included warnings and errors, keeping their order.
func (a *Auditor) Partition(entries []Entry) ([]Entry, []Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return partition(a.rules, entries)
}

func partition(rules []Rule, entries []Entry) ([]Entry, []Entry) {
	var warnings, errs []Entry
	for i := range entries {
		switch entries[i].LevelName() {
		case WarningName:
			if included(rules, entries[i].Message) {
				warnings = append(warnings, entries[i])
			}
		case SevereName:
			if included(rules, entries[i].Message) {
				errs = append(errs, entries[i])
			}
		}
	}

	return warnings, errs
}

// Audit configures the auditor, fetches the browser log and returns a fresh report for
// the test. A failed fetch returns no report and the source error as is.
func (a *Auditor) Audit(ctx context.Context, o *Options) (*Report, error) {
	start := time.Now()

	ctx, span := a.tracer.Start(ctx, "console_audit", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.configure(o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "configure")
		return nil, err
	}

	entries, err := a.src.GetLog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get log")
		return nil, err
	}

	warnings, errs := partition(a.rules, entries)

	rep := NewReport()
	for i := range warnings {
		rep.SpecResults = append(rep.SpecResults, failure(&warnings[i]))
	}
	for i := range errs {
		rep.SpecResults = append(rep.SpecResults, failure(&errs[i]))
	}

	if len(warnings) > 0 && a.policy.FailOnWarning {
		rep.FailedCount++
	}
	if len(errs) > 0 && a.policy.FailOnError {
		rep.FailedCount++
	}

	span.SetAttributes(
		attribute.Int("console.entries", len(entries)),
		attribute.Int("console.warnings", len(warnings)),
		attribute.Int("console.errors", len(errs)),
		attribute.Int("console.failed", rep.FailedCount),
	)

	a.log.Debug("browser log audited",
		zap.Int("entries", len(entries)),
		zap.Int("warnings", len(warnings)),
		zap.Int("errors", len(errs)),
		zap.Int("failed", rep.FailedCount),
		zap.Time("start", start),
		zap.Duration("elapsed", time.Since(start)),
	)

	return rep, nil
}
