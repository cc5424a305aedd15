package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

// A Serde encodes values in the schema registry wire format: magic byte,
// schema id, then the avro payload.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error

	// SchemaID is the registry id written into every payload.
	SchemaID() int
}

// avroSerde binds one avro schema to one Go type T.
type avroSerde[T any] struct {
	id     int
	schema avro.Schema
	wire   sr.Serde
}

func (s *avroSerde[T]) Encode(v any) ([]byte, error) {
	return s.wire.Encode(v)
}

func (s *avroSerde[T]) Decode(data []byte, v any) error {
	return s.wire.Decode(data, v)
}

func (s *avroSerde[T]) SchemaID() int {
	return s.id
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

// TopicSubject follows the topic name strategy for record values.
func TopicSubject(topic string) string {
	return topic + "-value"
}

// NewSerdeOrderDispatchedV1 registers the order event schema under the
// configured subject.
func NewSerdeOrderDispatchedV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeOrderDispatchedV1"

	s, err := newAvroSerde[OrderDispatchedV1](ctx, OrderDispatchedSchemaTextV1, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func newAvroSerde[T any](
	ctx context.Context, schemaText string, opts []Opt,
) (*avroSerde[T], error) {
	var so serdeOpts
	for _, o := range opts {
		if err := o(&so); err != nil {
			return nil, err
		}
	}
	if so.subject == "" || so.si == nil {
		return nil, ErrTooFewOpts
	}

	schema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, err
	}

	id, err := so.si.DetermineID(ctx, so.subject, schemaText)
	if err != nil {
		return nil, err
	}

	s := &avroSerde[T]{id: id, schema: schema}
	var zero T
	s.wire.Register(
		id,
		zero,
		sr.EncodeFn(func(v any) ([]byte, error) {
			return avro.Marshal(s.schema, v)
		}),
		sr.DecodeFn(func(data []byte, v any) error {
			return avro.Unmarshal(s.schema, data, v)
		}),
	)
	return s, nil
}
