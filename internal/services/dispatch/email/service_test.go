package email

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

func testOrder() *models.Order {
	return &models.Order{
		InvoiceNumber: "INV-1",
		Email:         "a@b.com",
		Total:         decimal.NewNullDecimal(decimal.NewFromInt(25)),
		ShippingAddress: models.Address{
			Name:       "Jane",
			Address1:   "1 Main St",
			City:       "Springfield",
			Province:   "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		Items: []models.LineItem{
			{Name: "Shirt", Quantity: 1, CustomFields: map[string]string{"Size": "S/M"}},
		},
	}
}

func testConfig(baseURL string) Config {
	return Config{
		APIKey:         "re_key",
		To:             "owner@shop.test",
		From:           "PosturePro Orders <orders@posturepro.store>",
		BaseURL:        baseURL,
		FulfillmentURL: "https://cjdropshipping.com",
	}
}

func TestRenderHTMLKeepsEmptyOptionalLines(t *testing.T) {
	html, err := RenderHTML(testOrder(), "https://cjdropshipping.com")
	require.NoError(t, err)

	require.Contains(t, html, "<p><strong>Order #:</strong> INV-1</p>")
	require.Contains(t, html, "<p><strong>Total:</strong> $25</p>")
	require.Contains(t, html, "<p><strong>Size:</strong> S/M</p>")
	require.Contains(t, html, "<p>Jane<br>\na@b.com<br>\n</p>")
	require.Contains(t, html, "<p>1 Main St<br>\n<br>\nSpringfield, IL 62701<br>\nUS</p>")
	require.Contains(t, html, `<a href="https://cjdropshipping.com">Fulfill on CJDropshipping</a>`)
}

func TestRenderHTMLEscapesCustomerInput(t *testing.T) {
	order := testOrder()
	order.ShippingAddress.Name = "<script>alert(1)</script>"

	html, err := RenderHTML(order, "https://cjdropshipping.com")
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestBuildRequest(t *testing.T) {
	svc := New(logger.Discard(), httpclient.New(time.Second), testConfig("https://api.resend.com/"))

	req, err := svc.BuildRequest(testOrder())
	require.NoError(t, err)
	require.Equal(t, "PosturePro Orders <orders@posturepro.store>", req.From)
	require.Equal(t, "owner@shop.test", req.To)
	require.Equal(t, "New Order #INV-1 - $25", req.Subject)
}

func TestDispatch(t *testing.T) {
	var received Request

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer server.Close()

	svc := New(logger.Discard(), httpclient.New(time.Second), testConfig(server.URL))
	require.Equal(t, models.ChannelEmail, svc.Channel())

	require.NoError(t, svc.Dispatch(context.Background(), testOrder()))
	require.Equal(t, "owner@shop.test", received.To)
	require.Equal(t, "New Order #INV-1 - $25", received.Subject)
	require.Contains(t, received.HTML, "INV-1")
}

func TestDispatchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"API key is invalid"}`))
	}))
	defer server.Close()

	err := New(logger.Discard(), httpclient.New(time.Second), testConfig(server.URL)).
		Dispatch(context.Background(), testOrder())
	require.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)

	var channelErr *internalErrors.ChannelError
	require.True(t, errors.As(err, &channelErr))
	require.Equal(t, models.ChannelEmail, channelErr.Channel)
	require.Contains(t, string(channelErr.Response), "API key is invalid")
}
