package intake

import (
	"fmt"

	"github.com/mmynk/splitvision/internal/models"
)

// AssignmentResult is the command interpreter's response to one user command.
type AssignmentResult struct {
	Assignments          []AssignmentUpdate `json:"assignments" validate:"required,dive"`
	UnassignedItems      []string           `json:"unassigned_items"`
	ReconciliationAlerts []string           `json:"reconciliation_alerts"`
}

// AssignmentUpdate proposes weights for one item.
type AssignmentUpdate struct {
	ItemID  string         `json:"itemId" validate:"required"`
	Persons []PersonWeight `json:"persons" validate:"required,dive"`
	Action  string         `json:"action,omitempty" validate:"omitempty,oneof=highlight pulse check"`
}

// PersonWeight is one person's share on an item.
type PersonWeight struct {
	Name   string   `json:"name" validate:"required"`
	Weight *float64 `json:"weight" validate:"required,finite"`
}

// ParseAssignmentResult decodes and validates a command interpreter response.
func ParseAssignmentResult(text string) (*AssignmentResult, error) {
	var r AssignmentResult
	if err := decode(text, &r); err != nil {
		return nil, err
	}
	if err := ValidateAssignmentResult(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ValidateAssignmentResult checks an already-typed result.
func ValidateAssignmentResult(r *AssignmentResult) error {
	return check(r)
}

// Proposals converts the result into ledger proposals. Non-positive weights
// pass through unchanged, and each one adds an alert since the ledger will
// give that person no share of the item.
func (r *AssignmentResult) Proposals() ([]models.Proposal, []string) {
	var alerts []string
	proposals := make([]models.Proposal, len(r.Assignments))
	for i, a := range r.Assignments {
		persons := make([]models.Assignment, len(a.Persons))
		for j, p := range a.Persons {
			w := deref(p.Weight)
			if w <= 0 {
				alerts = append(alerts, fmt.Sprintf("%s was given weight %g on item %s, which counts as no share", p.Name, w, a.ItemID))
			}
			persons[j] = models.Assignment{Name: p.Name, Weight: w}
		}
		proposals[i] = models.Proposal{ItemID: a.ItemID, Persons: persons, Action: a.Action}
	}
	return proposals, alerts
}
