// Package calculator implements the receipt ledger: merging weighted
// assignments into items and deriving what each person owes.
//
// Every function here is pure. Callers own the item slices and recompute
// settlements after each change.
package calculator

import "github.com/mmynk/splitvision/internal/models"

// CalculateSettlement computes how much each person owes including a
// proportional share of tax and tip.
//
// Based on the algorithm:
//
//	person_share = price × weight / total_weight            (per item)
//	person_total = person_subtotal × (1 + (tax + tip) / receipt_subtotal)
//
// The receipt subtotal includes unassigned items, so their tax and tip burden
// lands on whoever is assigned something. People are returned in order of
// first appearance across the items.
func CalculateSettlement(items []models.Item, tax, tip float64) []models.PersonSettlement {
	subtotal := Subtotal(items)

	var order []string
	shares := make(map[string]float64)

	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			continue
		}

		totalWeight := 0.0
		for _, a := range item.AssignedTo {
			totalWeight += effectiveWeight(a.Weight)
		}
		if totalWeight <= 0 {
			continue
		}

		for _, a := range item.AssignedTo {
			w := effectiveWeight(a.Weight)
			if w == 0 {
				continue
			}
			if _, seen := shares[a.Name]; !seen {
				order = append(order, a.Name)
			}
			shares[a.Name] += item.Price * (w / totalWeight)
		}
	}

	ratio := 0.0
	if subtotal > 0 {
		ratio = (tax + tip) / subtotal
	}

	settlements := make([]models.PersonSettlement, 0, len(order))
	for _, name := range order {
		settlements = append(settlements, models.PersonSettlement{
			Name:      name,
			Subtotal:  shares[name],
			TotalOwed: shares[name] * (1 + ratio),
		})
	}
	return settlements
}

// Subtotal is the sum of all item prices, assigned or not.
func Subtotal(items []models.Item) float64 {
	sum := 0.0
	for _, item := range items {
		sum += item.Price
	}
	return sum
}

// Reconcile returns the printed total minus (subtotal + tax). A non-zero
// result usually means the digitizer missed a line or a fee.
func Reconcile(items []models.Item, tax, total float64) float64 {
	return total - (Subtotal(items) + tax)
}

// UnassignedItems returns the items nobody has been assigned to yet.
func UnassignedItems(items []models.Item) []models.Item {
	var out []models.Item
	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			out = append(out, item)
		}
	}
	return out
}

// effectiveWeight treats non-positive weights as no share.
func effectiveWeight(w float64) float64 {
	if w > 0 {
		return w
	}
	return 0
}
