package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
)

// Parse decodes a webhook body. Numbers are kept as json.Number so amounts
// survive without float rounding.
func Parse(body []byte) (*models.RawEvent, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw models.RawEvent
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", internalErrors.ErrMalformedPayload, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after event", internalErrors.ErrMalformedPayload)
	}

	return &raw, nil
}

// Filter reports ErrEventIgnored for every event other than order.completed.
func Filter(raw *models.RawEvent) error {
	if raw == nil || raw.EventName != models.OrderCompletedEvent {
		return internalErrors.ErrEventIgnored
	}

	return nil
}
