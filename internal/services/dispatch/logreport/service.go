package logreport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

const (
	rule            = "=================================================="
	dateLayout      = "1/2/2006, 3:04:05 PM"
	fulfillmentHint = "Go to CJDropshipping → Create order with above details"
)

var reportTemplate = template.Must(template.New("report").Parse(`
` + rule + `
=== NEW ORDER ===
Order #: {{.InvoiceNumber}}
Date: {{.Date}}
Total: ${{.Total}} {{.Currency}}

--- CUSTOMER ---
Email: {{.Email}}
Name: {{.Name}}
Address: {{.Address}}
Phone: {{.Phone}}

--- ITEMS ---
Items: {{.Items}}

--- FULFILLMENT ACTION ---
Action: {{.Action}}
` + rule + `

`))

type report struct {
	InvoiceNumber string
	Date          string
	Total         string
	Currency      string
	Email         string
	Name          string
	Address       string
	Phone         string
	Items         string
	Action        string
}

// Service writes a human-scannable order report to the diagnostic stream.
type Service struct {
	log logger.Logger
	out io.Writer
	tpl *template.Template
}

func New(log logger.Logger, out io.Writer) *Service {
	return &Service{
		log: log,
		out: out,
		tpl: reportTemplate,
	}
}

func (s *Service) Channel() models.Channel {
	return models.ChannelLog
}

// Dispatch never fails: a report that cannot be rendered degrades to one log line.
func (s *Service) Dispatch(ctx context.Context, order *models.Order) error {
	const op = "services.dispatch.logreport.Dispatch"

	if err := s.render(order); err != nil {
		s.log.ErrorContext(ctx, op,
			logger.String("detail", "new order received, report unavailable"),
			logger.String("invoice_number", order.InvoiceNumber),
			logger.Err(err),
		)
	}

	return nil
}

func (s *Service) render(order *models.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render report: %v", r)
		}
	}()

	var buf bytes.Buffer
	if err = s.tpl.Execute(&buf, project(order)); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}

	if _, err = s.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

func project(order *models.Order) report {
	addr := order.ShippingAddress

	phone := addr.Phone
	if phone == "" {
		phone = "Not provided"
	}

	date := "Invalid Date"
	if !order.CreationDate.IsZero() {
		date = order.CreationDate.Local().Format(dateLayout)
	}

	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fmt.Sprintf("%dx %s (Size: %s) - $%s",
			item.Quantity, item.Name, item.Size(models.NotificationSizeDefault), models.FormatAmount(item.UnitPrice)))
	}

	return report{
		InvoiceNumber: order.InvoiceNumber,
		Date:          date,
		Total:         models.FormatAmount(order.Total),
		Currency:      order.Currency,
		Email:         order.Email,
		Name:          addr.Name,
		Address:       joinNonBlank(addr.Address1, addr.Address2, addr.CityLine(), addr.Country),
		Phone:         phone,
		Items:         strings.Join(items, "\n"),
		Action:        fulfillmentHint,
	}
}

func joinNonBlank(lines ...string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}
