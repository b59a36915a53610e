package events

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestKafkaWriterKeysByPayer(t *testing.T) {
	w := NewKafkaWriter("localhost:9092", "service-addons")
	defer w.Close()

	assert.Equal(t, "service-addons", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
