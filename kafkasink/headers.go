package kafkasink

import (
	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel/propagation"
)

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)

// headerCarrier exposes kafka record headers to otel propagators.
type headerCarrier struct {
	rec *kgo.Record
}

func (h headerCarrier) Get(key string) string {
	for i := range h.rec.Headers {
		if h.rec.Headers[i].Key == key {
			return string(h.rec.Headers[i].Value)
		}
	}
	return ""
}

func (h headerCarrier) Set(key, value string) {
	for i := range h.rec.Headers {
		if h.rec.Headers[i].Key == key {
			h.rec.Headers[i].Value = []byte(value)
			return
		}
	}

	h.rec.Headers = append(h.rec.Headers, kgo.RecordHeader{Key: key, Value: []byte(value)})
}

func (h headerCarrier) Keys() []string {
	keys := make([]string, 0, len(h.rec.Headers))
	for i := range h.rec.Headers {
		keys = append(keys, h.rec.Headers[i].Key)
	}
	return keys
}
