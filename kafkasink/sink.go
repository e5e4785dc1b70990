package kafkasink

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/roadrunner-server/console/v5/consolelog"
	"github.com/roadrunner-server/errors"
	"github.com/twmb/franz-go/pkg/kgo"
	jprop "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tracerName string = "console"

	// RunHeader carries the id of the test run the report belongs to.
	RunHeader string = "rr_console_run"
	// FailedHeader carries the report failed count.
	FailedHeader string = "rr_console_failed"
)

type Sink struct {
	log    *zap.Logger
	cfg    *Config
	client *kgo.Client
	prop   propagation.TextMapPropagator
	tracer trace.Tracer
}

// New creates the kafka client and pings the brokers.
func New(ctx context.Context, log *zap.Logger, cfg *Config, tp trace.TracerProvider) (*Sink, error) {
	const op = errors.Op("kafka_sink_new")

	opts, err := cfg.InitDefault(log)
	if err != nil {
		return nil, errors.E(op, err)
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, errors.E(op, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Ping.Timeout)
	defer cancel()

	err = client.Ping(pingCtx)
	if err != nil {
		client.Close()
		return nil, errors.E(op, errors.Errorf("ping kafka: %v", err))
	}

	return newSink(log, cfg, client, tp), nil
}

// FromClient builds a sink on top of a client owned by the caller. cfg.Topic is used as is.
func FromClient(log *zap.Logger, cfg *Config, client *kgo.Client, tp trace.TracerProvider) *Sink {
	return newSink(log, cfg, client, tp)
}

func newSink(log *zap.Logger, cfg *Config, client *kgo.Client, tp trace.TracerProvider) *Sink {
	return &Sink{
		log:    log,
		cfg:    cfg,
		client: client,
		prop:   propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}, jprop.Jaeger{}),
		tracer: tp.Tracer(tracerName),
	}
}

// Publish produces the report synchronously.
func (s *Sink) Publish(ctx context.Context, runID string, r *consolelog.Report) error {
	const op = errors.Op("kafka_sink_publish")
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "console_publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	rec, err := s.record(ctx, runID, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return errors.E(op, err)
	}

	err = s.client.ProduceSync(ctx, rec).FirstErr()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "produce")
		return errors.E(op, err)
	}

	span.SetAttributes(attribute.String("messaging.destination.name", rec.Topic))
	s.log.Debug("report was published", zap.String("topic", rec.Topic), zap.String("run", runID), zap.Time("start", start), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Sink) record(ctx context.Context, runID string, r *consolelog.Report) (*kgo.Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	rec := &kgo.Record{
		Key:   []byte(runID),
		Value: data,
		Topic: s.cfg.Topic,
		Headers: []kgo.RecordHeader{
			{Key: RunHeader, Value: []byte(runID)},
			{Key: FailedHeader, Value: []byte(strconv.Itoa(r.FailedCount))},
		},
		Timestamp: time.Now(),
	}

	s.prop.Inject(ctx, headerCarrier{rec: rec})
	return rec, nil
}

func (s *Sink) Stop() {
	s.client.Close()
}
