package intake

import (
	"github.com/mmynk/splitvision/internal/ids"
	"github.com/mmynk/splitvision/internal/models"
)

// Receipt is the digitizer's normalized output.
type Receipt struct {
	Items []ReceiptLine `json:"items" validate:"required,dive"`
	Tax   *float64      `json:"tax" validate:"required,finite,gte=0"`
	Total *float64      `json:"total" validate:"required,finite,gte=0"`
}

// ReceiptLine is one printed line with its price.
type ReceiptLine struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,finite,gte=0"`
}

// ParseReceipt decodes and validates a digitizer response.
func ParseReceipt(text string) (*Receipt, error) {
	var r Receipt
	if err := decode(text, &r); err != nil {
		return nil, err
	}
	if err := ValidateReceipt(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ValidateReceipt checks an already-typed receipt.
func ValidateReceipt(r *Receipt) error {
	return check(r)
}

// TaxAmount returns the validated tax.
func (r *Receipt) TaxAmount() float64 { return deref(r.Tax) }

// TotalAmount returns the validated printed total.
func (r *Receipt) TotalAmount() float64 { return deref(r.Total) }

// ToItems builds unassigned ledger items with fresh IDs. Prices are taken
// as-is.
func (r *Receipt) ToItems() []models.Item {
	items := make([]models.Item, len(r.Items))
	for i, line := range r.Items {
		items[i] = models.Item{
			ID:    ids.NewItem(),
			Name:  line.Name,
			Price: deref(line.Price),
		}
	}
	return items
}

// Float returns a pointer to v, for building payloads in code.
func Float(v float64) *float64 { return &v }

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
