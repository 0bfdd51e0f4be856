package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

const embedColor = 0x22c55e

type Message struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Title     string  `json:"title"`
	Color     int     `json:"color"`
	Fields    []Field `json:"fields"`
	Timestamp string  `json:"timestamp"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type poster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, payload []byte) (*httpclient.Response, error)
}

// Service posts a single embed to a chat webhook.
type Service struct {
	log        logger.Logger
	client     poster
	webhookURL string
	now        func() time.Time
}

func New(log logger.Logger, client poster, webhookURL string) *Service {
	return &Service{
		log:        log,
		client:     client,
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

func (s *Service) Channel() models.Channel {
	return models.ChannelChat
}

func (s *Service) Dispatch(ctx context.Context, order *models.Order) error {
	const op = "services.dispatch.chat.Dispatch"

	payload, err := json.Marshal(BuildMessage(order, s.now()))
	if err != nil {
		return fmt.Errorf("%s: marshal message: %w", op, err)
	}

	resp, err := s.client.PostJSON(ctx, s.webhookURL, nil, payload)
	if err != nil {
		channelErr := &internalErrors.ChannelError{Channel: models.ChannelChat, Payload: payload, Err: err}
		if resp != nil {
			channelErr.Response = resp.Body
		}
		return fmt.Errorf("%s: %w", op, channelErr)
	}

	s.log.InfoContext(ctx, op,
		logger.String("invoice_number", order.InvoiceNumber),
		logger.Int("status", resp.StatusCode),
	)

	return nil
}

func BuildMessage(order *models.Order, now time.Time) Message {
	addr := order.ShippingAddress

	return Message{
		Embeds: []Embed{
			{
				Title: "New Order #" + order.InvoiceNumber,
				Color: embedColor,
				Fields: []Field{
					{Name: "Customer", Value: addr.Name, Inline: true},
					{Name: "Total", Value: "$" + models.FormatAmount(order.Total), Inline: true},
					{Name: "Size", Value: order.FirstItemSize(models.NotificationSizeDefault), Inline: true},
					{Name: "Email", Value: order.Email},
					{Name: "Shipping Address", Value: AddressBlock(addr)},
				},
				Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z"),
			},
		},
	}
}

// AddressBlock drops blank lines, so a missing second address line leaves no gap.
func AddressBlock(addr models.Address) string {
	lines := make([]string, 0, 3)
	for _, line := range []string{addr.Address1, addr.Address2, addr.CityLine()} {
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
