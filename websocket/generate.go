package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/dvergr/featureflag"
	"github.com/aukilabs/dvergr/service"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// HeaderClientID is the HTTP header a client can set to identify itself.
const HeaderClientID = "X-Dvergr-Client-Id"

const defaultIdleTimeout = time.Minute

// GenerateRequest is the payload of a generate_request message.
type GenerateRequest = service.Request

// PingData is the payload of ping and pong messages.
type PingData struct {
	Nonce uint64 `json:"nonce,omitempty"`
}

// GenerateHandler is the handler that serves dungeon generation requests to a
// WebSocket client.
type GenerateHandler struct {
	// The service generating dungeons.
	Dungeons *service.Dungeons

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	FeatureFlags featureflag.FeatureFlag

	conn     *websocket.Conn
	clientID string
}

func (h *GenerateHandler) HandleConnect(conn *websocket.Conn) {
	h.conn = conn

	if req := conn.Request(); req != nil {
		h.clientID = req.Header.Get(HeaderClientID)
	}
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}
}

func (h *GenerateHandler) HandlePing(ctx context.Context, respond ResponseSender, msg Msg) error {
	var ping PingData
	if err := msg.DataTo(&ping); err != nil {
		respond.Send(newErrorMsg(msg.RequestID, err))
		return nil
	}

	pong, err := NewMsg(MsgTypePong, msg.RequestID, ping)
	if err != nil {
		return err
	}
	respond.Send(pong)
	return nil
}

// HandleGenerate generates a dungeon and sends it back. Generation failures
// are reported to the client with an error message and keep the connection
// open.
func (h *GenerateHandler) HandleGenerate(ctx context.Context, respond ResponseSender, msg Msg) error {
	var req GenerateRequest
	if err := msg.DataTo(&req); err != nil {
		respond.Send(newErrorMsg(msg.RequestID, err))
		return nil
	}

	d, err := h.Dungeons.Generate(ctx, req)
	if err != nil {
		respond.Send(newErrorMsg(msg.RequestID, err))
		return nil
	}

	if h.FeatureFlags.IsSet(featureflag.FlagDisablePartitionTree) {
		c := *d
		c.Instance = d.Instance.WithoutTrees()
		d = &c
	}

	res, err := NewMsg(MsgTypeGenerateResponse, msg.RequestID, d)
	if err != nil {
		return err
	}
	respond.Send(res)
	return nil
}

func (h *GenerateHandler) HandleDisconnect(err error) {
}

func (h *GenerateHandler) Receiver() Receiver {
	return func() (Msg, int, error) {
		return Receive(h.conn)
	}
}

func (h *GenerateHandler) Sender() Sender {
	return func(msg Msg) (int, error) {
		return Send(h.conn, msg)
	}
}

func (h *GenerateHandler) Close() {
}

func (h *GenerateHandler) IdleTimeout() time.Duration {
	if h.ClientIdleTimeout <= 0 {
		return defaultIdleTimeout
	}
	return h.ClientIdleTimeout
}

func (h *GenerateHandler) GetClientID() string {
	return h.clientID
}
