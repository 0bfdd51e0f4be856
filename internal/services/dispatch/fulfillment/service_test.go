package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_notifier/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/services/variant"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/httpclient"
	"github.com/tumbleweedd/two_services_system/order_notifier/pkg/logger"
)

func testMapper(t *testing.T) *variant.Mapper {
	mapper, err := variant.NewMapper(map[string]string{"S/M": "vid-sm", "L/XL": "vid-lxl"})
	require.NoError(t, err)
	return mapper
}

func testOrder() *models.Order {
	return &models.Order{
		InvoiceNumber: "INV-1",
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
			{Name: "Shirt", Quantity: 3, CustomFields: map[string]string{"Size": "L/XL"}},
			{Name: "Belt", Quantity: 1, CustomFields: map[string]string{}},
		},
	}
}

func TestBuildRequest(t *testing.T) {
	svc := New(logger.Discard(), httpclient.New(time.Second), testMapper(t), "key", "https://cj.test", false)

	req := svc.BuildRequest(testOrder())

	require.Equal(t, &CreateOrderRequest{
		OrderNumber:          "INV-1",
		ShippingZip:          "62701",
		ShippingCountry:      "US",
		ShippingCountryCode:  "US",
		ShippingProvince:     "IL",
		ShippingCity:         "Springfield",
		ShippingPhone:        "",
		ShippingCustomerName: "Jane",
		ShippingAddress:      "1 Main St",
		LogisticName:         "USPS",
		FromCountryCode:      "US",
		PayType:              2,
		Products: []Product{
			{Vid: "vid-sm", Quantity: 1},
			{Vid: "vid-sm", Quantity: 3},
			{Vid: "vid-sm", Quantity: 1},
		},
	}, req)
}

func TestBuildRequestPerItemVariants(t *testing.T) {
	svc := New(logger.Discard(), httpclient.New(time.Second), testMapper(t), "key", "https://cj.test", true)

	req := svc.BuildRequest(testOrder())
	require.Equal(t, []Product{
		{Vid: "vid-sm", Quantity: 1},
		{Vid: "vid-lxl", Quantity: 3},
		{Vid: "vid-lxl", Quantity: 1},
	}, req.Products)
}

func TestBuildRequestAddressAndDefaults(t *testing.T) {
	svc := New(logger.Discard(), httpclient.New(time.Second), testMapper(t), "key", "https://cj.test", false)

	order := testOrder()
	order.ShippingAddress.Address2 = "Apt 4"
	order.ShippingAddress.Phone = "555-0100"
	order.Items[0].CustomFields = nil

	req := svc.BuildRequest(order)
	require.Equal(t, "1 Main St Apt 4", req.ShippingAddress)
	require.Equal(t, "555-0100", req.ShippingPhone)
	require.Equal(t, "vid-lxl", req.Products[0].Vid)
}

func TestCreateOrder(t *testing.T) {
	var received CreateOrderRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api2.0/v1/shopping/order/createOrderV2", r.URL.Path)
		require.Equal(t, "key", r.Header.Get("CJ-Access-Token"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		_, _ = w.Write([]byte(`{"code":200,"result":true,"message":"Success","data":{"orderId":"CJ-9"},"requestId":"req-1"}`))
	}))
	defer server.Close()

	svc := New(logger.Discard(), httpclient.New(time.Second), testMapper(t), "key", server.URL+"/api2.0/v1/", false)
	require.Equal(t, models.ChannelFulfillment, svc.Channel())

	resp, err := svc.CreateOrder(context.Background(), testOrder())
	require.NoError(t, err)
	require.True(t, resp.Result)
	require.Equal(t, "req-1", resp.RequestID)
	require.JSONEq(t, `{"orderId":"CJ-9"}`, string(resp.Data))

	require.Equal(t, "INV-1", received.OrderNumber)
	require.Len(t, received.Products, 3)
}

func TestCreateOrderFailure(t *testing.T) {
	tCases := []struct {
		name       string
		status     int
		body       string
		order      func() *models.Order
		wantErr    error
		wantCalled bool
	}{
		{
			name:       "rejected",
			status:     http.StatusOK,
			body:       `{"code":1600100,"result":false,"message":"Insufficient balance"}`,
			order:      testOrder,
			wantErr:    internalErrors.ErrProviderRejected,
			wantCalled: true,
		},
		{
			name:       "server_error",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			order:      testOrder,
			wantErr:    httpclient.ErrUnexpectedStatus,
			wantCalled: true,
		},
		{
			name:       "not_json",
			status:     http.StatusOK,
			body:       `<html>`,
			order:      testOrder,
			wantCalled: true,
		},
		{
			name:   "no_items",
			status: http.StatusOK,
			order: func() *models.Order {
				order := testOrder()
				order.Items = nil
				return order
			},
			wantCalled: false,
		},
	}

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			called := false

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(tCase.status)
				_, _ = w.Write([]byte(tCase.body))
			}))
			defer server.Close()

			svc := New(logger.Discard(), httpclient.New(time.Second), testMapper(t), "key", server.URL, false)

			err := svc.Dispatch(context.Background(), tCase.order())
			require.Error(t, err)
			if tCase.wantErr != nil {
				require.ErrorIs(t, err, tCase.wantErr)
			}

			var channelErr *internalErrors.ChannelError
			require.True(t, errors.As(err, &channelErr))
			require.Equal(t, models.ChannelFulfillment, channelErr.Channel)
			require.True(t, json.Valid(channelErr.Payload))
			require.Equal(t, tCase.wantCalled, called)
		})
	}
}
