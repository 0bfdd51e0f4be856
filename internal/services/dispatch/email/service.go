package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

// Optional lines (phone, second address line) stay in place as empty lines.
var bodyTemplate = template.Must(template.New("email").Parse(`
<h2>New Order Received</h2>
<p><strong>Order #:</strong> {{.InvoiceNumber}}</p>
<p><strong>Total:</strong> ${{.Total}}</p>
<p><strong>Size:</strong> {{.Size}}</p>

<h3>Customer</h3>
<p>{{.Name}}<br>
{{.Email}}<br>
{{.Phone}}</p>

<h3>Shipping Address</h3>
<p>{{.Address1}}<br>
{{.Address2}}<br>
{{.CityLine}}<br>
{{.Country}}</p>

<hr>
<p><a href="{{.FulfillmentURL}}">Fulfill on CJDropshipping</a></p>
`))

type Request struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type body struct {
	InvoiceNumber  string
	Total          string
	Size           string
	Name           string
	Email          string
	Phone          string
	Address1       string
	Address2       string
	CityLine       string
	Country        string
	FulfillmentURL string
}

type poster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, payload []byte) (*httpclient.Response, error)
}

type Config struct {
	APIKey         string
	To             string
	From           string
	BaseURL        string
	FulfillmentURL string
}

// Service sends a transactional notification email through the provider's send endpoint.
type Service struct {
	log    logger.Logger
	client poster
	cfg    Config
}

func New(log logger.Logger, client poster, cfg Config) *Service {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Service{
		log:    log,
		client: client,
		cfg:    cfg,
	}
}

func (s *Service) Channel() models.Channel {
	return models.ChannelEmail
}

func (s *Service) Dispatch(ctx context.Context, order *models.Order) error {
	const op = "services.dispatch.email.Dispatch"

	req, err := s.BuildRequest(order)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	resp, err := s.client.PostJSON(ctx, s.cfg.BaseURL+"/emails", map[string]string{
		"Authorization": "Bearer " + s.cfg.APIKey,
	}, payload)
	if err != nil {
		channelErr := &internalErrors.ChannelError{Channel: models.ChannelEmail, Payload: payload, Err: err}
		if resp != nil {
			channelErr.Response = resp.Body
		}
		return fmt.Errorf("%s: %w", op, channelErr)
	}

	var sent sendResponse
	if err = json.Unmarshal(resp.Body, &sent); err != nil {
		s.log.WarnContext(ctx, op, logger.String("decode response error", err.Error()))
	}

	s.log.InfoContext(ctx, op,
		logger.String("invoice_number", order.InvoiceNumber),
		logger.String("email_id", sent.ID),
	)

	return nil
}

func (s *Service) BuildRequest(order *models.Order) (*Request, error) {
	html, err := RenderHTML(order, s.cfg.FulfillmentURL)
	if err != nil {
		return nil, err
	}

	return &Request{
		From:    s.cfg.From,
		To:      s.cfg.To,
		Subject: fmt.Sprintf("New Order #%s - $%s", order.InvoiceNumber, models.FormatAmount(order.Total)),
		HTML:    html,
	}, nil
}

func RenderHTML(order *models.Order, fulfillmentURL string) (string, error) {
	addr := order.ShippingAddress

	var buf bytes.Buffer
	if err := bodyTemplate.Execute(&buf, body{
		InvoiceNumber:  order.InvoiceNumber,
		Total:          models.FormatAmount(order.Total),
		Size:           order.FirstItemSize(models.NotificationSizeDefault),
		Name:           addr.Name,
		Email:          order.Email,
		Phone:          addr.Phone,
		Address1:       addr.Address1,
		Address2:       addr.Address2,
		CityLine:       addr.CityLine(),
		Country:        addr.Country,
		FulfillmentURL: fulfillmentURL,
	}); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	return buf.String(), nil
}
