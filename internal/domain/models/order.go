package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SizeFieldName = "Size"

	// NotificationSizeDefault is shown by the notification channels when no size was chosen.
	NotificationSizeDefault = "N/A"
	// FulfillmentSizeDefault is ordered from the fulfillment provider when no size was chosen.
	FulfillmentSizeDefault = "L/XL"
)

// Order is the canonical completed purchase shared by every dispatcher.
type Order struct {
	InvoiceNumber   string              `json:"invoiceNumber"`
	Email           string              `json:"email"`
	Total           decimal.NullDecimal `json:"total"`
	Currency        string              `json:"currency"`
	CreationDate    time.Time           `json:"creationDate"`
	BillingAddress  Address             `json:"billingAddress"`
	ShippingAddress Address             `json:"shippingAddress"`
	Items           []LineItem          `json:"items"`
}

type Address struct {
	Name       string `json:"name"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type LineItem struct {
	Name         string              `json:"name"`
	Quantity     int                 `json:"quantity"`
	UnitPrice    decimal.NullDecimal `json:"price"`
	CustomFields map[string]string   `json:"customFields"`
}

// Size returns the item's size selection or def when the item has none.
func (li LineItem) Size(def string) string {
	if size := li.CustomFields[SizeFieldName]; size != "" {
		return size
	}

	return def
}

// FirstItemSize returns the size selection of the first line item or def.
func (o *Order) FirstItemSize(def string) string {
	if len(o.Items) == 0 {
		return def
	}

	return o.Items[0].Size(def)
}

// CityLine renders "City, Province PostalCode".
func (a Address) CityLine() string {
	return a.City + ", " + a.Province + " " + a.PostalCode
}

// FormatAmount renders an amount the way the checkout provider sends it; an
// absent amount renders empty.
func FormatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return ""
	}

	return amount.Decimal.String()
}
