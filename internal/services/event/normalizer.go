package event

import (
	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
)

// Normalize builds the canonical order from the provider's flat order schema.
// Missing fields degrade to blank values; nothing here fails.
func Normalize(content models.Document) *models.Order {
	order := &models.Order{
		InvoiceNumber:   content.String("invoiceNumber"),
		Email:           content.String("email"),
		Total:           content.Decimal("total"),
		Currency:        content.String("currency"),
		CreationDate:    content.Time("creationDate"),
		BillingAddress:  address(content, "billingAddress"),
		ShippingAddress: address(content, "shippingAddress"),
	}

	for _, item := range content.Documents("items") {
		order.Items = append(order.Items, lineItem(item))
	}

	return order
}

func address(content models.Document, prefix string) models.Address {
	return models.Address{
		Name:       content.String(prefix + "Name"),
		Address1:   content.String(prefix + "Address1"),
		Address2:   content.String(prefix + "Address2"),
		City:       content.String(prefix + "City"),
		Province:   content.String(prefix + "Province"),
		PostalCode: content.String(prefix + "PostalCode"),
		Country:    content.String(prefix + "Country"),
		Phone:      content.String(prefix + "Phone"),
	}
}

func lineItem(item models.Document) models.LineItem {
	li := models.LineItem{
		Name:         item.String("name"),
		Quantity:     item.Int("quantity"),
		UnitPrice:    item.Decimal("price"),
		CustomFields: make(map[string]string),
	}

	for _, field := range item.Documents("customFields") {
		name := field.String("name")
		if name == "" {
			continue
		}
		if _, seen := li.CustomFields[name]; seen {
			continue
		}
		li.CustomFields[name] = field.String("value")
	}

	return li
}
