// Package service implements the Connect handlers. Handlers hold no session
// state: every call loads the session, applies a pure ledger function and
// saves the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitvision/internal/calculator"
	"github.com/mmynk/splitvision/internal/ids"
	"github.com/mmynk/splitvision/internal/intake"
	"github.com/mmynk/splitvision/internal/middleware"
	"github.com/mmynk/splitvision/internal/models"
	"github.com/mmynk/splitvision/internal/storage"
	"github.com/mmynk/splitvision/pkg/api"
)

var _ api.SessionServiceHandler = (*SessionService)(nil)

var (
	errAuthRequired    = errors.New("authentication required")
	errSessionNotFound = errors.New("session not found")
)

// SessionService implements the Connect SessionService.
type SessionService struct {
	store  storage.SessionRepository
	logger *slog.Logger
}

// NewSessionService creates a SessionService backed by the given repository.
func NewSessionService(store storage.SessionRepository, logger *slog.Logger) *SessionService {
	return &SessionService{store: store, logger: logger}
}

// CreateSession starts a session from an already-structured receipt.
func (s *SessionService) CreateSession(ctx context.Context, req *connect.Request[api.CreateSessionRequest]) (*connect.Response[api.CreateSessionResponse], error) {
	receipt := &intake.Receipt{
		Items: make([]intake.ReceiptLine, 0, len(req.Msg.Items)),
		Tax:   req.Msg.Tax,
		Total: req.Msg.Total,
	}
	for _, line := range req.Msg.Items {
		receipt.Items = append(receipt.Items, intake.ReceiptLine{Name: line.Name, Price: line.Price})
	}
	if err := intake.ValidateReceipt(receipt); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	session, err := s.startSession(ctx, req.Msg.Title, receipt)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateSessionResponse{Session: view(session)}), nil
}

// ImportReceipt starts a session from the digitizer's raw response.
func (s *SessionService) ImportReceipt(ctx context.Context, req *connect.Request[api.ImportReceiptRequest]) (*connect.Response[api.ImportReceiptResponse], error) {
	receipt, err := intake.ParseReceipt(req.Msg.Text)
	if err != nil {
		s.logger.Warn("ImportReceipt: rejected digitizer payload", "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	session, err := s.startSession(ctx, req.Msg.Title, receipt)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ImportReceiptResponse{Session: view(session)}), nil
}

func (s *SessionService) startSession(ctx context.Context, title string, receipt *intake.Receipt) (*models.Session, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	session := &models.Session{
		ID:      ids.NewSession(),
		OwnerID: userID,
		Title:   strings.TrimSpace(title),
		Tax:     receipt.TaxAmount(),
		Total:   receipt.TotalAmount(),
		Items:   receipt.ToItems(),
	}
	session.Messages = append(session.Messages, newMessage(models.RoleAssistant,
		fmt.Sprintf("Bill digitized! Total is $%.2f. I'm ready for assignments. Who had what?", session.Total), nil))

	if err := s.store.Save(ctx, session); err != nil {
		s.logger.Error("failed to save new session", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Session created", "session_id", session.ID, "items", len(session.Items), "total", session.Total)
	return session, nil
}

// GetSession returns a session with its derived settlement.
func (s *SessionService) GetSession(ctx context.Context, req *connect.Request[api.GetSessionRequest]) (*connect.Response[api.GetSessionResponse], error) {
	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetSessionResponse{Session: view(session)}), nil
}

// ListSessions returns the caller's sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context, req *connect.Request[api.ListSessionsRequest]) (*connect.Response[api.ListSessionsResponse], error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}

	summaries, err := s.store.List(ctx, userID)
	if err != nil {
		s.logger.Error("ListSessions failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if summaries == nil {
		summaries = []models.SessionSummary{}
	}
	return connect.NewResponse(&api.ListSessionsResponse{Sessions: summaries}), nil
}

// DeleteSession removes a session the caller owns.
func (s *SessionService) DeleteSession(ctx context.Context, req *connect.Request[api.DeleteSessionRequest]) (*connect.Response[api.DeleteSessionResponse], error) {
	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, session.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, errSessionNotFound)
		}
		s.logger.Error("DeleteSession failed", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.Info("Session deleted", "session_id", session.ID)
	return connect.NewResponse(&api.DeleteSessionResponse{}), nil
}

// ApplyAssignments validates the command interpreter's response, merges its
// proposals into the session and records the exchange in the transcript.
func (s *SessionService) ApplyAssignments(ctx context.Context, req *connect.Request[api.ApplyAssignmentsRequest]) (*connect.Response[api.ApplyAssignmentsResponse], error) {
	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	result, err := intake.ParseAssignmentResult(req.Msg.Result)
	if err != nil {
		s.logger.Warn("ApplyAssignments: rejected interpreter payload", "session_id", session.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	proposals, weightAlerts := result.Proposals()
	alerts := make([]string, 0, len(result.ReconciliationAlerts)+len(weightAlerts))
	alerts = append(alerts, result.ReconciliationAlerts...)
	alerts = append(alerts, weightAlerts...)

	unknown := make(map[string]bool)
	for _, id := range calculator.UnknownItemIDs(session.Items, proposals) {
		unknown[id] = true
		alerts = append(alerts, fmt.Sprintf("Item %s not found on this receipt", id))
	}

	actions := make(map[string]string)
	for _, p := range proposals {
		if !unknown[p.ItemID] && p.Action != "" {
			actions[p.ItemID] = p.Action
		}
	}

	session.Items = calculator.MergeAssignments(session.Items, proposals)

	var replyText string
	if len(alerts) > 0 {
		replyText = "Calculated! Note: " + joinAlerts(alerts)
	} else {
		replyText = "All set. I've updated the shares proportionally."
	}
	if cmd := strings.TrimSpace(req.Msg.Command); cmd != "" {
		session.Messages = append(session.Messages, newMessage(models.RoleUser, cmd, nil))
	}
	reply := newMessage(models.RoleAssistant, replyText, alerts)
	session.Messages = append(session.Messages, reply)

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Assignments applied",
		"session_id", session.ID,
		"proposals", len(proposals),
		"alerts", len(alerts),
	)
	return connect.NewResponse(&api.ApplyAssignmentsResponse{
		Session: view(session),
		Alerts:  alerts,
		Actions: actions,
		Reply:   reply,
	}), nil
}

// AddItem appends a manually entered, unassigned item.
func (s *SessionService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("item name is required"))
	}
	if !validAmount(req.Msg.Price) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("price must be a non-negative number"))
	}

	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	item := models.Item{ID: ids.NewItem(), Name: name, Price: req.Msg.Price}
	session.Items = append(session.Items, item)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Item added", "session_id", session.ID, "item_id", item.ID, "price", item.Price)
	return connect.NewResponse(&api.AddItemResponse{ItemID: item.ID, Session: view(session)}), nil
}

// RemoveItem deletes an item together with its assignment entries.
func (s *SessionService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error) {
	if !ids.HasPrefix(req.Msg.ItemID, ids.PrefixItem) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("malformed item_id %q", req.Msg.ItemID))
	}

	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	before := len(session.Items)
	session.Items = calculator.RemoveItem(session.Items, req.Msg.ItemID)
	if len(session.Items) == before {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("item %s not found", req.Msg.ItemID))
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Item removed", "session_id", session.ID, "item_id", req.Msg.ItemID)
	return connect.NewResponse(&api.RemoveItemResponse{Session: view(session)}), nil
}

// SetTip replaces the session tip.
func (s *SessionService) SetTip(ctx context.Context, req *connect.Request[api.SetTipRequest]) (*connect.Response[api.SetTipResponse], error) {
	if !validAmount(req.Msg.Tip) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tip must be a non-negative number"))
	}

	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session.Tip = req.Msg.Tip
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetTipResponse{Session: view(session)}), nil
}

// RecordPayment sets how much one person paid the restaurant. An amount of
// zero clears the entry.
func (s *SessionService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("payer name is required"))
	}
	if !validAmount(req.Msg.Amount) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("amount must be a non-negative number"))
	}

	session, err := s.load(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	session.Payments = setPayment(session.Payments, name, req.Msg.Amount)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RecordPaymentResponse{Session: view(session)}), nil
}

// load fetches a session owned by the caller. Sessions owned by someone
// else are reported as not found.
func (s *SessionService) load(ctx context.Context, sessionID string) (*models.Session, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}
	if !ids.HasPrefix(sessionID, ids.PrefixSession) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("malformed session_id %q", sessionID))
	}

	session, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, errSessionNotFound)
		}
		s.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if session.OwnerID != userID {
		s.logger.Warn("session access denied", "session_id", sessionID, "user_id", userID)
		return nil, connect.NewError(connect.CodeNotFound, errSessionNotFound)
	}
	return session, nil
}

func (s *SessionService) save(ctx context.Context, session *models.Session) error {
	if err := s.store.Save(ctx, session); err != nil {
		s.logger.Error("failed to save session", "session_id", session.ID, "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
	return nil
}

// view derives the settlement and reconciliation figures for a session.
func view(session *models.Session) api.SessionView {
	settlement := calculator.CalculateSettlement(session.Items, session.Tax, session.Tip)
	transfers := calculator.SettleUp(settlement, session.Payments)
	if transfers == nil {
		transfers = []models.Transfer{}
	}
	return api.SessionView{
		Session:         *session,
		Settlement:      settlement,
		Transfers:       transfers,
		Subtotal:        calculator.Subtotal(session.Items),
		UnassignedCount: len(calculator.UnassignedItems(session.Items)),
		Discrepancy:     calculator.Reconcile(session.Items, session.Tax, session.Total),
	}
}

func newMessage(role models.Role, content string, alerts []string) models.Message {
	return models.Message{
		ID:        ids.NewMessage(),
		Role:      role,
		Content:   content,
		Alerts:    alerts,
		CreatedAt: time.Now().Unix(),
	}
}

// setPayment overwrites the named payer's amount in place, appends a new
// payer, or drops the payer when amount is zero.
func setPayment(payments []models.Payment, name string, amount float64) []models.Payment {
	out := make([]models.Payment, 0, len(payments)+1)
	found := false
	for _, p := range payments {
		if p.Name != name {
			out = append(out, p)
			continue
		}
		found = true
		if amount > 0 {
			out = append(out, models.Payment{Name: name, Amount: amount})
		}
	}
	if !found && amount > 0 {
		out = append(out, models.Payment{Name: name, Amount: amount})
	}
	return out
}

// joinAlerts joins alerts into sentences, e.g. "Beer not found. Total is off".
func joinAlerts(alerts []string) string {
	trimmed := make([]string, len(alerts))
	for i, a := range alerts {
		trimmed[i] = strings.TrimRight(strings.TrimSpace(a), ".")
	}
	return strings.Join(trimmed, ". ")
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
