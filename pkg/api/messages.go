// Package api defines the SplitVision RPC surface: message types, procedure
// names, handler constructors and typed clients for the Connect protocol.
package api

import "github.com/mmynk/splitvision/internal/models"

// ReceiptLine is one digitized line as it arrives from the digitizer.
type ReceiptLine struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
}

type CreateSessionRequest struct {
	Title string        `json:"title,omitempty"`
	Items []ReceiptLine `json:"items"`
	Tax   *float64      `json:"tax"`
	Total *float64      `json:"total"`
}

type CreateSessionResponse struct {
	Session SessionView `json:"session"`
}

// ImportReceiptRequest carries the digitizer's raw response text.
type ImportReceiptRequest struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

type ImportReceiptResponse struct {
	Session SessionView `json:"session"`
}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

type GetSessionResponse struct {
	Session SessionView `json:"session"`
}

type ListSessionsRequest struct{}

type ListSessionsResponse struct {
	Sessions []models.SessionSummary `json:"sessions"`
}

type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}

type DeleteSessionResponse struct{}

// ApplyAssignmentsRequest carries the user's command and the command
// interpreter's raw JSON response for it.
type ApplyAssignmentsRequest struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
	Result    string `json:"result"`
}

type ApplyAssignmentsResponse struct {
	Session SessionView `json:"session"`

	// Alerts are the reconciliation notes shown with the assistant reply.
	Alerts []string `json:"alerts"`

	// Actions maps item ID to the display hint for items that changed.
	Actions map[string]string `json:"actions"`

	// Reply is the assistant message appended to the transcript.
	Reply models.Message `json:"reply"`
}

type AddItemRequest struct {
	SessionID string  `json:"session_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
}

type AddItemResponse struct {
	ItemID  string      `json:"item_id"`
	Session SessionView `json:"session"`
}

type RemoveItemRequest struct {
	SessionID string `json:"session_id"`
	ItemID    string `json:"item_id"`
}

type RemoveItemResponse struct {
	Session SessionView `json:"session"`
}

type SetTipRequest struct {
	SessionID string  `json:"session_id"`
	Tip       float64 `json:"tip"`
}

type SetTipResponse struct {
	Session SessionView `json:"session"`
}

type RecordPaymentRequest struct {
	SessionID string  `json:"session_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

type RecordPaymentResponse struct {
	Session SessionView `json:"session"`
}

// SessionView is a session plus everything derived from it.
type SessionView struct {
	models.Session

	Settlement []models.PersonSettlement `json:"settlement"`
	Transfers  []models.Transfer         `json:"transfers"`
	Subtotal   float64                   `json:"subtotal"`

	// UnassignedCount is the number of items nobody is assigned to.
	UnassignedCount int `json:"unassigned_count"`

	// Discrepancy is the printed total minus (subtotal + tax).
	Discrepancy float64 `json:"discrepancy"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}
