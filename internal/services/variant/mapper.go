package variant

import (
	"errors"

	"github.com/tumbleweedd/two_services_system/order_notifier/internal/domain/models"
)

var ErrNoFallbackVariant = errors.New("variant table has no entry for the fallback size")

// Mapper resolves a size label to the fulfillment provider's variant id.
type Mapper struct {
	table    map[string]string
	fallback string
}

// NewMapper copies table. The table must carry the fallback size.
func NewMapper(table map[string]string) (*Mapper, error) {
	fallback, ok := table[models.FulfillmentSizeDefault]
	if !ok || fallback == "" {
		return nil, ErrNoFallbackVariant
	}

	copied := make(map[string]string, len(table))
	for size, vid := range table {
		copied[size] = vid
	}

	return &Mapper{table: copied, fallback: fallback}, nil
}

// VariantFor never fails: unknown labels get the fallback variant.
func (m *Mapper) VariantFor(size string) string {
	if vid, ok := m.table[size]; ok && vid != "" {
		return vid
	}

	return m.fallback
}
