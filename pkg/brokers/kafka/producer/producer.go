package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

// Producer publishes dispatch failures. The webhook response never waits on
// the broker acknowledging a message, so an async producer is enough.
type Producer struct {
	log   logger.Logger
	topic string

	producer sarama.AsyncProducer
	wg       sync.WaitGroup
}

func NewProducer(log logger.Logger, topic string, brokerAddress []string) (*Producer, error) {
	const op = "brokers.kafka.producer.NewProducer"

	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForLocal
	producerConfig.Producer.Compression = sarama.CompressionNone
	producerConfig.Producer.Return.Successes = true
	producerConfig.Producer.Return.Errors = true

	asyncProducer, err := sarama.NewAsyncProducer(brokerAddress, producerConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithAsyncProducer(log, topic, asyncProducer), nil
}

func NewWithAsyncProducer(log logger.Logger, topic string, asyncProducer sarama.AsyncProducer) *Producer {
	p := &Producer{
		log:      log,
		topic:    topic,
		producer: asyncProducer,
	}

	p.wg.Add(1)
	go p.drain()

	return p
}

func (p *Producer) drain() {
	const op = "brokers.kafka.producer.drain"

	defer p.wg.Done()

	errs, successes := p.producer.Errors(), p.producer.Successes()
	for errs != nil || successes != nil {
		select {
		case sendErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			p.log.Warn(op, logger.String("failed to send message", sendErr.Error()))
		case success, ok := <-successes:
			if !ok {
				successes = nil
				continue
			}

			p.log.Debug(op, logger.String("topic", success.Topic), logger.Any("offset", success.Offset))
		}
	}
}

// Report enqueues the failure keyed by its invoice number so events for one
// order land on the same partition.
func (p *Producer) Report(ctx context.Context, failure *models.DispatchFailure) error {
	const op = "brokers.kafka.producer.Report"

	bytes, err := json.Marshal(failure)
	if err != nil {
		return fmt.Errorf("%s: marshal failure: %w", op, err)
	}

	key := failure.InvoiceNumber
	if key == "" {
		key = failure.UUID()
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(bytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_uuid"), Value: []byte(failure.UUID())},
			{Key: []byte("channel"), Value: []byte(failure.Channel)},
		},
	}

	select {
	case p.producer.Input() <- message:
		p.log.DebugContext(ctx, op, fmt.Sprintf("send failure #%s to kafka", failure.UUID()))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// Close flushes buffered messages and waits for the result channels to drain.
func (p *Producer) Close() error {
	err := p.producer.Close()
	p.wg.Wait()

	return err
}
