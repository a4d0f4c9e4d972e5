package broker

import (
	"github.com/segmentio/kafka-go"
)

const (
	dlqReasonHeader = "x-dlq-reason"
	dlqSourceHeader = "x-dlq-source-topic"
)

// otelHeaderCarrier adapts kafka-go headers to OpenTelemetry's TextMapCarrier.
type otelHeaderCarrier struct {
	headers *[]kafka.Header
}

func (c otelHeaderCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c otelHeaderCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c otelHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

// setHeader replaces key in headers, appending it when absent.
func setHeader(headers []kafka.Header, key, value string) []kafka.Header {
	out := make([]kafka.Header, 0, len(headers)+1)
	found := false
	for _, h := range headers {
		if h.Key == key {
			out = append(out, kafka.Header{Key: key, Value: []byte(value)})
			found = true
			continue
		}
		out = append(out, h)
	}
	if !found {
		out = append(out, kafka.Header{Key: key, Value: []byte(value)})
	}
	return out
}
