package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SessionServiceName is the fully-qualified name of the SessionService.
const SessionServiceName = "splitvision.v1.SessionService"

// Procedure paths for SessionService.
const (
	SessionServiceCreateSessionProcedure    = "/splitvision.v1.SessionService/CreateSession"
	SessionServiceImportReceiptProcedure    = "/splitvision.v1.SessionService/ImportReceipt"
	SessionServiceGetSessionProcedure       = "/splitvision.v1.SessionService/GetSession"
	SessionServiceListSessionsProcedure     = "/splitvision.v1.SessionService/ListSessions"
	SessionServiceDeleteSessionProcedure    = "/splitvision.v1.SessionService/DeleteSession"
	SessionServiceApplyAssignmentsProcedure = "/splitvision.v1.SessionService/ApplyAssignments"
	SessionServiceAddItemProcedure          = "/splitvision.v1.SessionService/AddItem"
	SessionServiceRemoveItemProcedure       = "/splitvision.v1.SessionService/RemoveItem"
	SessionServiceSetTipProcedure           = "/splitvision.v1.SessionService/SetTip"
	SessionServiceRecordPaymentProcedure    = "/splitvision.v1.SessionService/RecordPayment"
)

// SessionServiceHandler is implemented by the session orchestrator.
type SessionServiceHandler interface {
	CreateSession(context.Context, *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error)
	ImportReceipt(context.Context, *connect.Request[ImportReceiptRequest]) (*connect.Response[ImportReceiptResponse], error)
	GetSession(context.Context, *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error)
	ListSessions(context.Context, *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error)
	DeleteSession(context.Context, *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error)
	ApplyAssignments(context.Context, *connect.Request[ApplyAssignmentsRequest]) (*connect.Response[ApplyAssignmentsResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error)
	SetTip(context.Context, *connect.Request[SetTipRequest]) (*connect.Response[SetTipResponse], error)
	RecordPayment(context.Context, *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error)
}

// NewSessionServiceHandler builds an HTTP handler for every SessionService
// procedure. It returns the path prefix to mount it on.
func NewSessionServiceHandler(svc SessionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withJSON(opts)
	mux := http.NewServeMux()
	mux.Handle(SessionServiceCreateSessionProcedure, connect.NewUnaryHandler(SessionServiceCreateSessionProcedure, svc.CreateSession, opts...))
	mux.Handle(SessionServiceImportReceiptProcedure, connect.NewUnaryHandler(SessionServiceImportReceiptProcedure, svc.ImportReceipt, opts...))
	mux.Handle(SessionServiceGetSessionProcedure, connect.NewUnaryHandler(SessionServiceGetSessionProcedure, svc.GetSession, opts...))
	mux.Handle(SessionServiceListSessionsProcedure, connect.NewUnaryHandler(SessionServiceListSessionsProcedure, svc.ListSessions, opts...))
	mux.Handle(SessionServiceDeleteSessionProcedure, connect.NewUnaryHandler(SessionServiceDeleteSessionProcedure, svc.DeleteSession, opts...))
	mux.Handle(SessionServiceApplyAssignmentsProcedure, connect.NewUnaryHandler(SessionServiceApplyAssignmentsProcedure, svc.ApplyAssignments, opts...))
	mux.Handle(SessionServiceAddItemProcedure, connect.NewUnaryHandler(SessionServiceAddItemProcedure, svc.AddItem, opts...))
	mux.Handle(SessionServiceRemoveItemProcedure, connect.NewUnaryHandler(SessionServiceRemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(SessionServiceSetTipProcedure, connect.NewUnaryHandler(SessionServiceSetTipProcedure, svc.SetTip, opts...))
	mux.Handle(SessionServiceRecordPaymentProcedure, connect.NewUnaryHandler(SessionServiceRecordPaymentProcedure, svc.RecordPayment, opts...))
	return "/" + SessionServiceName + "/", mux
}

// SessionServiceClient is a typed client for SessionService.
type SessionServiceClient struct {
	createSession    *connect.Client[CreateSessionRequest, CreateSessionResponse]
	importReceipt    *connect.Client[ImportReceiptRequest, ImportReceiptResponse]
	getSession       *connect.Client[GetSessionRequest, GetSessionResponse]
	listSessions     *connect.Client[ListSessionsRequest, ListSessionsResponse]
	deleteSession    *connect.Client[DeleteSessionRequest, DeleteSessionResponse]
	applyAssignments *connect.Client[ApplyAssignmentsRequest, ApplyAssignmentsResponse]
	addItem          *connect.Client[AddItemRequest, AddItemResponse]
	removeItem       *connect.Client[RemoveItemRequest, RemoveItemResponse]
	setTip           *connect.Client[SetTipRequest, SetTipResponse]
	recordPayment    *connect.Client[RecordPaymentRequest, RecordPaymentResponse]
}

// NewSessionServiceClient constructs a client for the service at baseURL
// (e.g., http://localhost:8080).
func NewSessionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SessionServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withJSONClient(opts)
	return &SessionServiceClient{
		createSession:    connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+SessionServiceCreateSessionProcedure, opts...),
		importReceipt:    connect.NewClient[ImportReceiptRequest, ImportReceiptResponse](httpClient, baseURL+SessionServiceImportReceiptProcedure, opts...),
		getSession:       connect.NewClient[GetSessionRequest, GetSessionResponse](httpClient, baseURL+SessionServiceGetSessionProcedure, opts...),
		listSessions:     connect.NewClient[ListSessionsRequest, ListSessionsResponse](httpClient, baseURL+SessionServiceListSessionsProcedure, opts...),
		deleteSession:    connect.NewClient[DeleteSessionRequest, DeleteSessionResponse](httpClient, baseURL+SessionServiceDeleteSessionProcedure, opts...),
		applyAssignments: connect.NewClient[ApplyAssignmentsRequest, ApplyAssignmentsResponse](httpClient, baseURL+SessionServiceApplyAssignmentsProcedure, opts...),
		addItem:          connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+SessionServiceAddItemProcedure, opts...),
		removeItem:       connect.NewClient[RemoveItemRequest, RemoveItemResponse](httpClient, baseURL+SessionServiceRemoveItemProcedure, opts...),
		setTip:           connect.NewClient[SetTipRequest, SetTipResponse](httpClient, baseURL+SessionServiceSetTipProcedure, opts...),
		recordPayment:    connect.NewClient[RecordPaymentRequest, RecordPaymentResponse](httpClient, baseURL+SessionServiceRecordPaymentProcedure, opts...),
	}
}

func (c *SessionServiceClient) CreateSession(ctx context.Context, req *connect.Request[CreateSessionRequest]) (*connect.Response[CreateSessionResponse], error) {
	return c.createSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ImportReceipt(ctx context.Context, req *connect.Request[ImportReceiptRequest]) (*connect.Response[ImportReceiptResponse], error) {
	return c.importReceipt.CallUnary(ctx, req)
}

func (c *SessionServiceClient) GetSession(ctx context.Context, req *connect.Request[GetSessionRequest]) (*connect.Response[GetSessionResponse], error) {
	return c.getSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ListSessions(ctx context.Context, req *connect.Request[ListSessionsRequest]) (*connect.Response[ListSessionsResponse], error) {
	return c.listSessions.CallUnary(ctx, req)
}

func (c *SessionServiceClient) DeleteSession(ctx context.Context, req *connect.Request[DeleteSessionRequest]) (*connect.Response[DeleteSessionResponse], error) {
	return c.deleteSession.CallUnary(ctx, req)
}

func (c *SessionServiceClient) ApplyAssignments(ctx context.Context, req *connect.Request[ApplyAssignmentsRequest]) (*connect.Response[ApplyAssignmentsResponse], error) {
	return c.applyAssignments.CallUnary(ctx, req)
}

func (c *SessionServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *SessionServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[RemoveItemResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *SessionServiceClient) SetTip(ctx context.Context, req *connect.Request[SetTipRequest]) (*connect.Response[SetTipResponse], error) {
	return c.setTip.CallUnary(ctx, req)
}

func (c *SessionServiceClient) RecordPayment(ctx context.Context, req *connect.Request[RecordPaymentRequest]) (*connect.Response[RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

func withJSON(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func withJSONClient(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}
