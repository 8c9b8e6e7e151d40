// Package server exposes the command surface as a Connect RPC service that
// chat bridges call once per inbound chat event.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/secretsanta/internal/apperr"
	"github.com/mmynk/secretsanta/internal/command"
)

const (
	// BotServiceName is the fully-qualified name of the service.
	BotServiceName = "santa.v1.BotService"

	// BotServiceHandleProcedure is the path of the Handle RPC.
	BotServiceHandleProcedure = "/" + BotServiceName + "/Handle"
)

// HandleRequest is one chat event. Command is empty for free text.
type HandleRequest struct {
	UserID  string   `json:"user_id"`
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// LogAttrs describes the event in the call log without its free text.
func (r *HandleRequest) LogAttrs() []slog.Attr {
	name := command.Normalize(r.Command)
	if name == "" {
		name = "text"
	}
	return []slog.Attr{
		slog.String("user_id", r.UserID),
		slog.String("command", name),
	}
}

// ReplyOption is a selectable answer rendered as a button by the bridge.
type ReplyOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// HandleResponse is the reply to show in the chat.
type HandleResponse struct {
	Text     string        `json:"text"`
	Options  []ReplyOption `json:"options,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Done     bool          `json:"done"`
	Outcome  string        `json:"outcome"`
}

// LogOutcome returns how the command ended.
func (r *HandleResponse) LogOutcome() string {
	return r.Outcome
}

// Dispatcher executes chat commands.
type Dispatcher interface {
	Handle(ctx context.Context, req command.Request) (command.Reply, error)
}

// BotService implements the Handle RPC on top of a Dispatcher.
type BotService struct {
	dispatcher Dispatcher
}

// NewBotService creates a new BotService.
func NewBotService(dispatcher Dispatcher) *BotService {
	return &BotService{dispatcher: dispatcher}
}

// Handle runs one chat event through the dispatcher.
func (s *BotService) Handle(ctx context.Context, req *connect.Request[HandleRequest]) (*connect.Response[HandleResponse], error) {
	msg := req.Msg
	if strings.TrimSpace(msg.UserID) == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, apperr.Validation("user_id is required"))
	}

	reply, err := s.dispatcher.Handle(ctx, command.Request{
		UserID:  msg.UserID,
		Command: msg.Command,
		Args:    msg.Args,
		Text:    msg.Text,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}

	resp := &HandleResponse{
		Text:     reply.Text,
		Warnings: reply.Warnings,
		Done:     reply.Done,
		Outcome:  reply.Outcome,
	}
	for _, opt := range reply.Options {
		resp.Options = append(resp.Options, ReplyOption{Value: opt.Value, Label: opt.Label})
	}
	return connect.NewResponse(resp), nil
}

// NewBotServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewBotServiceHandler(svc *BotService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)
	handle := connect.NewUnaryHandler(BotServiceHandleProcedure, svc.Handle, opts...)

	mux := http.NewServeMux()
	mux.Handle(BotServiceHandleProcedure, handle)
	return "/" + BotServiceName + "/", mux
}

// BotServiceClient calls BotService over Connect.
type BotServiceClient struct {
	handle *connect.Client[HandleRequest, HandleResponse]
}

// NewBotServiceClient creates a client for the service at baseURL.
func NewBotServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BotServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec())}, opts...)
	return &BotServiceClient{
		handle: connect.NewClient[HandleRequest, HandleResponse](httpClient, baseURL+BotServiceHandleProcedure, opts...),
	}
}

// Handle calls BotService.Handle.
func (c *BotServiceClient) Handle(ctx context.Context, req *connect.Request[HandleRequest]) (*connect.Response[HandleResponse], error) {
	return c.handle.CallUnary(ctx, req)
}
