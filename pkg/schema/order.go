package schema

import "time"

// OrderDispatchedSchemaTextV1 describes a basket handed off to the farmer.
// Money amounts are decimal strings with two fraction digits.
const OrderDispatchedSchemaTextV1 = `{
	"type": "record",
	"namespace": "farmstore.orders",
	"name": "OrderDispatched",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "dispatched_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "customer_name", "type": "string"},
		{"name": "customer_phone", "type": "string"},
		{"name": "notes", "type": ["null", "string"], "default": null},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "OrderItem",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "name", "type": "string"},
					{"name": "unit", "type": "string"},
					{"name": "unit_price", "type": "string"},
					{"name": "quantity", "type": "int"},
					{"name": "line_total", "type": "string"}
				]
			}
		}},
		{"name": "subtotal", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "link", "type": "string"}
	]
}`

type (
	OrderDispatchedV1 struct {
		OrderID       string        `avro:"order_id"`
		DispatchedAt  time.Time     `avro:"dispatched_at"`
		CustomerName  string        `avro:"customer_name"`
		CustomerPhone string        `avro:"customer_phone"`
		Notes         *string       `avro:"notes"`
		Items         []OrderItemV1 `avro:"items"`
		Subtotal      string        `avro:"subtotal"`
		Currency      string        `avro:"currency"`
		Link          string        `avro:"link"`
	}

	OrderItemV1 struct {
		ProductID string `avro:"product_id"`
		Name      string `avro:"name"`
		Unit      string `avro:"unit"`
		UnitPrice string `avro:"unit_price"`
		Quantity  int    `avro:"quantity"`
		LineTotal string `avro:"line_total"`
	}
)
