package kafkasink

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/roadrunner-server/console/v5/consolelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestSink_Record(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
	})

	s := newSink(zap.NewNop(), &Config{Topic: "audits"}, nil, tp)

	ctx, span := tp.Tracer("test").Start(context.Background(), "teardown")
	defer span.End()

	rep := consolelog.NewReport()
	rep.FailedCount = 1
	rep.SpecResults = append(rep.SpecResults, consolelog.SpecResult{
		Description: consolelog.SevereName,
		Assertions:  []consolelog.Assertion{{ErrorMsg: "real crash"}},
	})

	rec, err := s.record(ctx, "run-1", rep)
	require.NoError(t, err)

	assert.Equal(t, "audits", rec.Topic)
	assert.Equal(t, []byte("run-1"), rec.Key)

	hc := headerCarrier{rec: rec}
	assert.Equal(t, "run-1", hc.Get(RunHeader))
	assert.Equal(t, "1", hc.Get(FailedHeader))
	assert.Contains(t, hc.Get("traceparent"), span.SpanContext().TraceID().String())
	assert.NotEmpty(t, hc.Get("uber-trace-id"))

	var got consolelog.Report
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	assert.Equal(t, *rep, got)
}

func TestHeaderCarrier(t *testing.T) {
	hc := headerCarrier{rec: &kgo.Record{}}
	hc.Set("a", "1")
	hc.Set("b", "2")
	hc.Set("a", "3")

	assert.Equal(t, "3", hc.Get("a"))
	assert.Equal(t, "2", hc.Get("b"))
	assert.Equal(t, "", hc.Get("c"))
	assert.Equal(t, []string{"a", "b"}, hc.Keys())
}
