package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const OrderCompletedEvent = "order.completed"

// RawEvent is an untrusted webhook delivery.
type RawEvent struct {
	EventName string   `json:"eventName"`
	Content   Document `json:"content"`
}

// Document is a schema-less JSON object. Accessors never fail: a missing or
// mistyped value yields the zero value.
type Document map[string]any

func (d Document) String(key string) string {
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (d Document) Decimal(key string) decimal.NullDecimal {
	var (
		value decimal.Decimal
		err   error
	)

	switch v := d[key].(type) {
	case json.Number:
		value, err = decimal.NewFromString(v.String())
	case string:
		value, err = decimal.NewFromString(v)
	case float64:
		value = decimal.NewFromFloat(v)
	default:
		return decimal.NullDecimal{}
	}

	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NewNullDecimal(value)
}

func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}

	return 0
}

// Time parses an RFC 3339 timestamp; anything else yields the zero time.
func (d Document) Time(key string) time.Time {
	s := d.String(key)
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}

// Documents returns the objects of an array value, skipping non-object elements.
func (d Document) Documents(key string) []Document {
	list, ok := d[key].([]any)
	if !ok {
		return nil
	}

	docs := make([]Document, 0, len(list))
	for _, elem := range list {
		if m, ok := elem.(map[string]any); ok {
			docs = append(docs, m)
		}
	}

	return docs
}
