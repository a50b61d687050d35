package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/splitvision/internal/models"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func names(settlements []models.PersonSettlement) []string {
	out := make([]string, len(settlements))
	for i, s := range settlements {
		out[i] = s.Name
	}
	return out
}

func TestCalculateSettlement(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		tax          float64
		tip          float64
		wantNames    []string
		validateFunc func(t *testing.T, got []models.PersonSettlement)
	}{
		{
			name: "no assignments yields no people",
			items: []models.Item{
				{ID: "i1", Name: "Pizza", Price: 20},
				{ID: "i2", Name: "Salad", Price: 10},
			},
			tax:       3,
			tip:       5,
			wantNames: []string{},
		},
		{
			name:      "empty item list",
			items:     nil,
			wantNames: []string{},
		},
		{
			name: "weighted split sums to price",
			items: []models.Item{
				{ID: "i1", Name: "Wings", Price: 9, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}, {Name: "B", Weight: 2}}},
			},
			wantNames: []string{"A", "B"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				if !near(got[0].Subtotal, 3) {
					t.Errorf("A subtotal = %v, want 3", got[0].Subtotal)
				}
				if !near(got[1].Subtotal, 6) {
					t.Errorf("B subtotal = %v, want 6", got[1].Subtotal)
				}
				if !near(got[0].Subtotal+got[1].Subtotal, 9) {
					t.Errorf("subtotals sum to %v, want 9", got[0].Subtotal+got[1].Subtotal)
				}
				if !near(got[1].TotalOwed, 6) {
					t.Errorf("B total = %v, want 6 with no tax or tip", got[1].TotalOwed)
				}
			},
		},
		{
			name: "unassigned item tax is absorbed by assigned people",
			items: []models.Item{
				{ID: "i1", Name: "Burger", Price: 10, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
				{ID: "i2", Name: "Steak", Price: 20},
			},
			tax:       3,
			wantNames: []string{"A"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				// subtotal = 30, ratio = 3/30 = 0.1
				if !near(got[0].Subtotal, 10) {
					t.Errorf("A subtotal = %v, want 10", got[0].Subtotal)
				}
				if !near(got[0].TotalOwed, 11) {
					t.Errorf("A total = %v, want 11", got[0].TotalOwed)
				}
			},
		},
		{
			name: "tax and tip are applied proportionally",
			items: []models.Item{
				{ID: "i1", Name: "Pizza", Price: 20, AssignedTo: []models.Assignment{{Name: "Alice", Weight: 1}, {Name: "Bob", Weight: 1}}},
				{ID: "i2", Name: "Salad", Price: 10, AssignedTo: []models.Assignment{{Name: "Alice", Weight: 1}}},
			},
			tax:       3,
			tip:       6,
			wantNames: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				// ratio = 9/30 = 0.3; Alice 20 -> 26, Bob 10 -> 13
				if !near(got[0].TotalOwed, 26) {
					t.Errorf("Alice total = %v, want 26", got[0].TotalOwed)
				}
				if !near(got[1].TotalOwed, 13) {
					t.Errorf("Bob total = %v, want 13", got[1].TotalOwed)
				}
			},
		},
		{
			name: "zero total weight contributes nothing",
			items: []models.Item{
				{ID: "i1", Name: "Fries", Price: 5, AssignedTo: []models.Assignment{{Name: "Z", Weight: 0}}},
				{ID: "i2", Name: "Soda", Price: 5, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
			},
			wantNames: []string{"A"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				if !near(got[0].Subtotal, 5) {
					t.Errorf("A subtotal = %v, want 5", got[0].Subtotal)
				}
			},
		},
		{
			name: "negative weights count as no share",
			items: []models.Item{
				{ID: "i1", Name: "Nachos", Price: 12, AssignedTo: []models.Assignment{{Name: "A", Weight: 2}, {Name: "B", Weight: -1}}},
				{ID: "i2", Name: "Dip", Price: 4, AssignedTo: []models.Assignment{{Name: "C", Weight: -3}}},
			},
			wantNames: []string{"A"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				if !near(got[0].Subtotal, 12) {
					t.Errorf("A subtotal = %v, want 12", got[0].Subtotal)
				}
			},
		},
		{
			name: "order follows first appearance",
			items: []models.Item{
				{ID: "i1", Name: "Beer", Price: 8, AssignedTo: []models.Assignment{{Name: "B", Weight: 1}}},
				{ID: "i2", Name: "Wine", Price: 12, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}, {Name: "B", Weight: 1}}},
			},
			wantNames: []string{"B", "A"},
		},
		{
			name: "fractional weights",
			items: []models.Item{
				{ID: "i1", Name: "Cake", Price: 10, AssignedTo: []models.Assignment{{Name: "A", Weight: 0.5}, {Name: "B", Weight: 1.5}}},
			},
			wantNames: []string{"A", "B"},
			validateFunc: func(t *testing.T, got []models.PersonSettlement) {
				if !near(got[0].Subtotal, 2.5) || !near(got[1].Subtotal, 7.5) {
					t.Errorf("subtotals = %v, %v, want 2.5, 7.5", got[0].Subtotal, got[1].Subtotal)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateSettlement(tt.items, tt.tax, tt.tip)
			gotNames := names(got)
			if len(gotNames) != len(tt.wantNames) {
				t.Fatalf("CalculateSettlement() people = %v, want %v", gotNames, tt.wantNames)
			}
			for i := range gotNames {
				if gotNames[i] != tt.wantNames[i] {
					t.Fatalf("CalculateSettlement() people = %v, want %v", gotNames, tt.wantNames)
				}
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, got)
			}
		})
	}
}

func TestCalculateSettlement_FullyAssignedSumsToPrices(t *testing.T) {
	items := []models.Item{
		{ID: "i1", Price: 17.35, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}, {Name: "B", Weight: 1}, {Name: "C", Weight: 1}}},
		{ID: "i2", Price: 4.99, AssignedTo: []models.Assignment{{Name: "C", Weight: 3}, {Name: "A", Weight: 4}}},
	}

	sum := 0.0
	for _, s := range CalculateSettlement(items, 0, 0) {
		sum += s.Subtotal
	}
	if !near(sum, 17.35+4.99) {
		t.Errorf("sum of subtotals = %v, want %v", sum, 17.35+4.99)
	}
}

func TestReconcile(t *testing.T) {
	items := []models.Item{{Price: 10}, {Price: 20}}
	if got := Reconcile(items, 3, 33); !near(got, 0) {
		t.Errorf("Reconcile() = %v, want 0", got)
	}
	if got := Reconcile(items, 3, 35.5); !near(got, 2.5) {
		t.Errorf("Reconcile() = %v, want 2.5", got)
	}
}

func TestUnassignedItems(t *testing.T) {
	items := []models.Item{
		{ID: "i1", AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
		{ID: "i2"},
		{ID: "i3", AssignedTo: []models.Assignment{}},
	}
	got := UnassignedItems(items)
	if len(got) != 2 || got[0].ID != "i2" || got[1].ID != "i3" {
		t.Errorf("UnassignedItems() = %v, want [i2 i3]", got)
	}
}
