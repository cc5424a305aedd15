// Package kafka publishes order hand-off events.
package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/farmstore/internal/core/domain"
	"github.com/niksmo/farmstore/pkg/phone"
	"github.com/niksmo/farmstore/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl             ProducerClient
	encoder        Encoder
	currencySymbol string
	phoneRegion    string
}

// ProducerClientOpt dials the brokers. tlsCfg may be nil for plaintext.
func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string, tlsCfg *tls.Config,
) ProducerOpt {
	return func(opts *producerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		}
		if tlsCfg != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsCfg))
		}
		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerWithClientOpt uses an already built client.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

// ProducerCurrencyOpt sets the currency symbol carried by order events.
func ProducerCurrencyOpt(symbol string) ProducerOpt {
	return func(opts *producerOpts) error {
		opts.currencySymbol = symbol
		return nil
	}
}

// ProducerPhoneRegionOpt sets the region national customer phone numbers
// are parsed in.
func ProducerPhoneRegionOpt(region string) ProducerOpt {
	return func(opts *producerOpts) error {
		opts.phoneRegion = region
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func receiptToSchemaV1(
	r domain.Receipt, currencySymbol, phoneRegion string,
) (s schema.OrderDispatchedV1) {
	s.OrderID = r.OrderID
	s.DispatchedAt = r.DispatchedAt
	s.CustomerName = r.Customer.Name
	s.CustomerPhone = phone.NormalizeE164(r.Customer.Phone, phoneRegion)
	if r.Customer.HasNotes() {
		notes := r.Customer.Notes
		s.Notes = &notes
	}
	s.Subtotal = r.Subtotal.StringFixed(2)
	s.Currency = currencySymbol
	s.Link = r.Link

	s.Items = make([]schema.OrderItemV1, len(r.Basket.Items))
	for i, li := range r.Basket.Items {
		s.Items[i] = schema.OrderItemV1{
			ProductID: li.ID,
			Name:      li.Name,
			Unit:      li.Unit,
			UnitPrice: li.Price.StringFixed(2),
			Quantity:  li.Quantity,
			LineTotal: li.LineTotal().StringFixed(2),
		}
	}
	return
}
