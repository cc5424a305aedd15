package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/internal/core/ordermsg"
	"github.com/niksmo/farmstore/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	_ port.OrderProducer    = (*OrderProducer)(nil)
	_ port.CheckoutObserver = (*OrderProducer)(nil)
)

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// An OrderProducer publishes a record per dispatched checkout, keyed by
// order id.
type OrderProducer struct {
	producer       producer
	encoder        Encoder
	currencySymbol string
	phoneRegion    string
	opPrefix       string
}

// NewOrderProducer requires a client option and [ProducerEncoderOpt].
func NewOrderProducer(
	opts ...ProducerOpt,
) (OrderProducer, error) {
	const op = "NewOrderProducer"

	options := producerOpts{currencySymbol: ordermsg.DefaultCurrencySymbol}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return OrderProducer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.encoder == nil {
		if options.cl != nil {
			options.cl.Close()
		}
		return OrderProducer{}, opErr(ErrTooFewOpts, op)
	}

	opPrefix := "OrderProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return OrderProducer{
		producer:       p,
		encoder:        options.encoder,
		currencySymbol: options.currencySymbol,
		phoneRegion:    options.phoneRegion,
		opPrefix:       opPrefix,
	}, nil
}

func (p OrderProducer) Close() {
	p.producer.close()
}

func (p OrderProducer) ProduceOrder(
	ctx context.Context, r domain.Receipt,
) error {
	const op = "ProduceOrder"
	log := slog.With("op", makeOp(p.opPrefix, op))

	s := receiptToSchemaV1(r, p.currencySymbol, p.phoneRegion)
	value, err := p.encoder.Encode(s)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	rec := &kgo.Record{Key: []byte(r.OrderID), Value: value}
	if err := p.producer.produce(ctx, rec); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	log.Debug("order produced", "orderID", r.OrderID)
	return nil
}

// CheckoutDispatched lets the producer observe a checkout directly.
func (p OrderProducer) CheckoutDispatched(
	ctx context.Context, r domain.Receipt,
) error {
	return p.ProduceOrder(ctx, r)
}
