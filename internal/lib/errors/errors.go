package errors

import (
	"errors"
	"fmt"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrEventIgnored     = errors.New("event ignored")
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrProviderRejected = errors.New("provider rejected request")
)

// ChannelError carries what a dispatcher sent and what it got back.
type ChannelError struct {
	Channel  models.Channel
	Payload  []byte
	Response []byte
	Err      error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("%s channel: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
