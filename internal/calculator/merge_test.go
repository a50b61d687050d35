package calculator

import (
	"reflect"
	"testing"

	"github.com/mmynk/splitvision/internal/models"
)

func TestMergeAssignments(t *testing.T) {
	base := func() []models.Item {
		return []models.Item{
			{ID: "i1", Name: "Pizza", Price: 20, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}, {Name: "C", Weight: 2}}},
			{ID: "i2", Name: "Salad", Price: 10},
		}
	}

	tests := []struct {
		name      string
		proposals []models.Proposal
		want      map[string][]models.Assignment
	}{
		{
			name:      "overwrite in place without duplicating",
			proposals: []models.Proposal{{ItemID: "i1", Persons: []models.Assignment{{Name: "A", Weight: 3}}}},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 3}, {Name: "C", Weight: 2}},
				"i2": nil,
			},
		},
		{
			name:      "new names append in proposal order",
			proposals: []models.Proposal{{ItemID: "i1", Persons: []models.Assignment{{Name: "D", Weight: 1}, {Name: "B", Weight: 1}, {Name: "C", Weight: 5}}}},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 1}, {Name: "C", Weight: 5}, {Name: "D", Weight: 1}, {Name: "B", Weight: 1}},
				"i2": nil,
			},
		},
		{
			name:      "names are case sensitive",
			proposals: []models.Proposal{{ItemID: "i1", Persons: []models.Assignment{{Name: "a", Weight: 4}}}},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 1}, {Name: "C", Weight: 2}, {Name: "a", Weight: 4}},
				"i2": nil,
			},
		},
		{
			name:      "unknown item is ignored",
			proposals: []models.Proposal{{ItemID: "nope", Persons: []models.Assignment{{Name: "A", Weight: 9}}}},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 1}, {Name: "C", Weight: 2}},
				"i2": nil,
			},
		},
		{
			name:      "non-positive weights are accepted",
			proposals: []models.Proposal{{ItemID: "i2", Persons: []models.Assignment{{Name: "B", Weight: 0}, {Name: "E", Weight: -1}}}},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 1}, {Name: "C", Weight: 2}},
				"i2": {{Name: "B", Weight: 0}, {Name: "E", Weight: -1}},
			},
		},
		{
			name: "later proposals for the same item compose",
			proposals: []models.Proposal{
				{ItemID: "i2", Persons: []models.Assignment{{Name: "B", Weight: 1}}},
				{ItemID: "i2", Persons: []models.Assignment{{Name: "B", Weight: 2}, {Name: "A", Weight: 1}}},
			},
			want: map[string][]models.Assignment{
				"i1": {{Name: "A", Weight: 1}, {Name: "C", Weight: 2}},
				"i2": {{Name: "B", Weight: 2}, {Name: "A", Weight: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeAssignments(base(), tt.proposals)
			for _, item := range got {
				if !reflect.DeepEqual(item.AssignedTo, tt.want[item.ID]) {
					t.Errorf("item %s assignments = %v, want %v", item.ID, item.AssignedTo, tt.want[item.ID])
				}
			}
		})
	}
}

func TestMergeAssignments_Idempotent(t *testing.T) {
	items := []models.Item{
		{ID: "i1", Price: 9, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
	}
	proposal := []models.Proposal{{ItemID: "i1", Persons: []models.Assignment{{Name: "A", Weight: 2}, {Name: "B", Weight: 1}}}}

	once := MergeAssignments(items, proposal)
	twice := MergeAssignments(once, proposal)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second merge changed state: %v -> %v", once, twice)
	}
}

func TestMergeAssignments_DoesNotMutateInput(t *testing.T) {
	items := []models.Item{
		{ID: "i1", Price: 9, AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
	}
	MergeAssignments(items, []models.Proposal{{ItemID: "i1", Persons: []models.Assignment{{Name: "A", Weight: 7}}}})

	if items[0].AssignedTo[0].Weight != 1 {
		t.Errorf("input was mutated: weight = %v", items[0].AssignedTo[0].Weight)
	}
}

func TestRemoveItem(t *testing.T) {
	items := []models.Item{
		{ID: "i1", AssignedTo: []models.Assignment{{Name: "A", Weight: 1}}},
		{ID: "i2", AssignedTo: []models.Assignment{{Name: "B", Weight: 1}}},
	}

	got := RemoveItem(items, "i1")
	if len(got) != 1 || got[0].ID != "i2" {
		t.Fatalf("RemoveItem() = %v, want only i2", got)
	}
	if len(CalculateSettlement(got, 0, 0)) != 1 {
		t.Errorf("removed item's assignments still count")
	}

	if got := RemoveItem(items, "missing"); len(got) != 2 {
		t.Errorf("RemoveItem(missing) dropped items: %v", got)
	}
}

func TestUnknownItemIDs(t *testing.T) {
	items := []models.Item{{ID: "i1"}, {ID: "i2"}}
	proposals := []models.Proposal{
		{ItemID: "x"},
		{ItemID: "i1"},
		{ItemID: "y"},
		{ItemID: "x"},
	}
	got := UnknownItemIDs(items, proposals)
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("UnknownItemIDs() = %v, want [x y]", got)
	}
}
