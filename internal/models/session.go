package models

// Session is one receipt being split. It is the unit the session repository
// loads and saves.
type Session struct {
	// ID is the session identifier (TypeID with the "rcpt" prefix).
	ID string `json:"id"`

	// OwnerID is the user who created the session.
	OwnerID string `json:"owner_id"`

	// Title is a display name, e.g. "Receipt - Oct 19, 2026".
	Title string `json:"title"`

	// Tax as printed on the receipt. Taken as-is from the digitizer.
	Tax float64 `json:"tax"`

	// Tip is user adjustable and starts at zero.
	Tip float64 `json:"tip"`

	// Total is the receipt's printed total. It is kept for display and
	// reconciliation only and never feeds the split calculation.
	Total float64 `json:"total"`

	Items    []Item    `json:"items"`
	Messages []Message `json:"messages"`
	Payments []Payment `json:"payments"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// SessionSummary is the row shown in the session history list.
type SessionSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
	CreatedAt int64   `json:"created_at"`
}

// Summary returns the list view of the session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Title:     s.Title,
		Total:     s.Total,
		ItemCount: len(s.Items),
		CreatedAt: s.CreatedAt,
	}
}

// Item represents a single line on the receipt.
// Items can be shared among multiple people with relative weights.
type Item struct {
	// ID is unique within a session (TypeID with the "item" prefix).
	ID string `json:"id"`

	// Name is the line description as printed (e.g., "Margherita", "IPA x2").
	Name string `json:"name"`

	// Price is the pre-tax price of the line. Non-negative.
	Price float64 `json:"price"`

	// AssignedTo holds at most one entry per person name, in the order the
	// names were first assigned.
	AssignedTo []Assignment `json:"assigned_to"`
}

// Assignment is one person's relative share of an item.
type Assignment struct {
	Name string `json:"name"`

	// Weight is a relative share ("2 out of 3"). Non-positive weights are
	// kept but yield no share.
	Weight float64 `json:"weight"`
}

// Proposal is an assignment update for one item, as produced by the command
// interpreter after boundary validation.
type Proposal struct {
	ItemID  string       `json:"item_id"`
	Persons []Assignment `json:"persons"`

	// Action is a display hint (highlight, pulse, check). The ledger ignores it.
	Action string `json:"action,omitempty"`
}

// PersonSettlement represents one person's calculated share of a receipt.
type PersonSettlement struct {
	Name string `json:"name"`

	// Subtotal is the sum of this person's weighted item shares (pre-tax).
	Subtotal float64 `json:"subtotal"`

	// TotalOwed is Subtotal inflated by (tax + tip) / receipt subtotal.
	TotalOwed float64 `json:"total_owed"`
}

// Payment records how much one person actually paid toward the receipt.
type Payment struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Transfer is one settle-up payment from a debtor to a creditor.
type Transfer struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Role identifies who wrote a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the assignment chat transcript.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Alerts are reconciliation notes attached to an assistant reply.
	Alerts []string `json:"alerts,omitempty"`

	CreatedAt int64 `json:"created_at"`
}
