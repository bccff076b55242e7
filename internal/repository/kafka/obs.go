package kafka

import (
	"slices"

	"github.com/segmentio/kafka-go"
)

// mapCarrierHeaders adapts kafka headers to the otel TextMapCarrier interface.
type mapCarrierHeaders map[string]string

func (m mapCarrierHeaders) Get(k string) string { return m[k] }
func (m mapCarrierHeaders) Set(k, v string)     { m[k] = v }
func (m mapCarrierHeaders) Keys() []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

func (m mapCarrierHeaders) ToKafka() []kafka.Header {
	keys := m.Keys()
	slices.Sort(keys)
	hs := make([]kafka.Header, 0, len(m))
	for _, k := range keys {
		hs = append(hs, kafka.Header{Key: k, Value: []byte(m[k])})
	}
	return hs
}
