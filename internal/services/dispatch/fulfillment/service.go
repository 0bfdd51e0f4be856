package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

const (
	createOrderPath = "/shopping/order/createOrderV2"
	tokenHeader     = "CJ-Access-Token"

	shippingCountryCode = "US"
	fromCountryCode     = "US"
	logisticName        = "USPS"
	// payTypeBalance pays from the account balance.
	payTypeBalance = 2
)

type CreateOrderRequest struct {
	OrderNumber          string    `json:"orderNumber" validate:"required"`
	ShippingZip          string    `json:"shippingZip"`
	ShippingCountry      string    `json:"shippingCountry"`
	ShippingCountryCode  string    `json:"shippingCountryCode"`
	ShippingProvince     string    `json:"shippingProvince"`
	ShippingCity         string    `json:"shippingCity"`
	ShippingPhone        string    `json:"shippingPhone"`
	ShippingCustomerName string    `json:"shippingCustomerName"`
	ShippingAddress      string    `json:"shippingAddress"`
	LogisticName         string    `json:"logisticName"`
	FromCountryCode      string    `json:"fromCountryCode"`
	PayType              int       `json:"payType"`
	Products             []Product `json:"products" validate:"required,min=1,dive"`
}

type Product struct {
	Vid      string `json:"vid" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type CreateOrderResponse struct {
	Code      int             `json:"code"`
	Result    bool            `json:"result"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID string          `json:"requestId"`
}

type poster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, payload []byte) (*httpclient.Response, error)
}

type variantMapper interface {
	VariantFor(size string) string
}

// Service creates dropshipping orders for completed checkouts.
type Service struct {
	log      logger.Logger
	client   poster
	mapper   variantMapper
	validate *validator.Validate

	apiKey  string
	baseURL string
	// perItemVariants maps each item's own size. Off by default: every item
	// then gets the variant of the first item's size.
	perItemVariants bool
}

func New(log logger.Logger, client poster, mapper variantMapper, apiKey, baseURL string, perItemVariants bool) *Service {
	return &Service{
		log:             log,
		client:          client,
		mapper:          mapper,
		validate:        validator.New(),
		apiKey:          apiKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		perItemVariants: perItemVariants,
	}
}

func (s *Service) Channel() models.Channel {
	return models.ChannelFulfillment
}

func (s *Service) Dispatch(ctx context.Context, order *models.Order) error {
	_, err := s.CreateOrder(ctx, order)
	return err
}

// CreateOrder submits the order and returns the provider's parsed answer.
func (s *Service) CreateOrder(ctx context.Context, order *models.Order) (*CreateOrderResponse, error) {
	const op = "services.dispatch.fulfillment.CreateOrder"

	req := s.BuildRequest(order)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	if err = s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &internalErrors.ChannelError{
			Channel: models.ChannelFulfillment,
			Payload: payload,
			Err:     fmt.Errorf("invalid order payload: %w", err),
		})
	}

	resp, err := s.client.PostJSON(ctx, s.baseURL+createOrderPath, map[string]string{
		tokenHeader: s.apiKey,
	}, payload)
	if err != nil {
		channelErr := &internalErrors.ChannelError{Channel: models.ChannelFulfillment, Payload: payload, Err: err}
		if resp != nil {
			channelErr.Response = resp.Body
		}
		return nil, fmt.Errorf("%s: %w", op, channelErr)
	}

	var result CreateOrderResponse
	if err = json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &internalErrors.ChannelError{
			Channel:  models.ChannelFulfillment,
			Payload:  payload,
			Response: resp.Body,
			Err:      fmt.Errorf("decode response: %w", err),
		})
	}

	if !result.Result {
		return &result, fmt.Errorf("%s: %w", op, &internalErrors.ChannelError{
			Channel:  models.ChannelFulfillment,
			Payload:  payload,
			Response: resp.Body,
			Err:      fmt.Errorf("%w: code %d: %s", internalErrors.ErrProviderRejected, result.Code, result.Message),
		})
	}

	s.log.InfoContext(ctx, op,
		logger.String("invoice_number", order.InvoiceNumber),
		logger.String("request_id", result.RequestID),
		logger.String("response", string(resp.Body)),
	)

	return &result, nil
}

func (s *Service) BuildRequest(order *models.Order) *CreateOrderRequest {
	addr := order.ShippingAddress

	vid := s.mapper.VariantFor(order.FirstItemSize(models.FulfillmentSizeDefault))

	products := make([]Product, 0, len(order.Items))
	for _, item := range order.Items {
		itemVid := vid
		if s.perItemVariants {
			itemVid = s.mapper.VariantFor(item.Size(models.FulfillmentSizeDefault))
		}

		products = append(products, Product{Vid: itemVid, Quantity: item.Quantity})
	}

	return &CreateOrderRequest{
		OrderNumber:          order.InvoiceNumber,
		ShippingZip:          addr.PostalCode,
		ShippingCountry:      addr.Country,
		ShippingCountryCode:  shippingCountryCode,
		ShippingProvince:     addr.Province,
		ShippingCity:         addr.City,
		ShippingPhone:        addr.Phone,
		ShippingCustomerName: addr.Name,
		ShippingAddress:      strings.TrimSpace(addr.Address1 + " " + addr.Address2),
		LogisticName:         logisticName,
		FromCountryCode:      fromCountryCode,
		PayType:              payTypeBalance,
		Products:             products,
	}
}
