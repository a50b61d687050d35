package calculator

import "github.com/mmynk/splitvision/internal/models"

// MergeAssignments applies proposals to a copy of items and returns it.
//
// For each proposal naming a known item, every (person, weight) pair is
// inserted or overwritten by exact name match. Entries the proposal does not
// name are left alone; existing entries keep their position and new names are
// appended in proposal order. Proposals for unknown items are skipped. Weights
// are taken as given, including non-positive ones.
//
// Re-applying the same proposal is a no-op.
func MergeAssignments(items []models.Item, proposals []models.Proposal) []models.Item {
	merged := cloneItems(items)

	index := make(map[string]int, len(merged))
	for i, item := range merged {
		if _, dup := index[item.ID]; !dup {
			index[item.ID] = i
		}
	}

	for _, p := range proposals {
		i, ok := index[p.ItemID]
		if !ok {
			continue
		}
		merged[i].AssignedTo = mergeEntries(merged[i].AssignedTo, p.Persons)
	}
	return merged
}

func mergeEntries(existing, incoming []models.Assignment) []models.Assignment {
	pos := make(map[string]int, len(existing)+len(incoming))
	for i, a := range existing {
		pos[a.Name] = i
	}
	for _, a := range incoming {
		if i, ok := pos[a.Name]; ok {
			existing[i].Weight = a.Weight
			continue
		}
		pos[a.Name] = len(existing)
		existing = append(existing, a)
	}
	return existing
}

// RemoveItem returns a copy of items without the item identified by itemID.
// The item's assignment entries go with it. Unknown IDs leave the list as is.
func RemoveItem(items []models.Item, itemID string) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, item := range cloneItems(items) {
		if item.ID == itemID {
			continue
		}
		out = append(out, item)
	}
	return out
}

// UnknownItemIDs lists the proposal item IDs that match no item, in proposal
// order without duplicates. MergeAssignments silently drops these; callers
// report them as reconciliation alerts.
func UnknownItemIDs(items []models.Item, proposals []models.Proposal) []string {
	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	var unknown []string
	reported := make(map[string]bool)
	for _, p := range proposals {
		if known[p.ItemID] || reported[p.ItemID] {
			continue
		}
		reported[p.ItemID] = true
		unknown = append(unknown, p.ItemID)
	}
	return unknown
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	for i, item := range items {
		out[i] = item
		if item.AssignedTo != nil {
			out[i].AssignedTo = append([]models.Assignment(nil), item.AssignedTo...)
		}
	}
	return out
}
