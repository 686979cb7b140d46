package marketplace

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/dto"
	"github.com/fachwerk-hq/fachwerk/internal/application/marketplace/usecases"
	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/interfaces/http/middleware"
	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
	"github.com/fachwerk-hq/fachwerk/internal/shared/goroutine"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
	"github.com/fachwerk-hq/fachwerk/internal/shared/utils"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 30 * time.Second
	streamReadLimit  = 4096
	streamLiveBuffer = 256

	// Live entries may repeat replayed ones or be redelivered by the relay.
	streamDedupeWindow = 512
)

// ConversationSubscriber delivers live ledger entries of one conversation.
// ready is closed once the subscription is active.
type ConversationSubscriber interface {
	Subscribe(ctx context.Context, conversationID string, ready chan<- struct{}, handler func(*dto.MessageDTO)) error
}

// StreamHandler pushes a conversation ledger over a WebSocket: first the
// entries after ?after=, then live entries as the relay publishes them.
type StreamHandler struct {
	openConversationUC usecases.OpenConversationExecutor
	listMessagesUC     usecases.ListMessagesExecutor
	subscriber         ConversationSubscriber
	upgrader           websocket.Upgrader
	logger             logger.Interface
}

func NewStreamHandler(
	openConversationUC usecases.OpenConversationExecutor,
	listMessagesUC usecases.ListMessagesExecutor,
	subscriber ConversationSubscriber,
	allowedOrigins []string,
	logger logger.Interface,
) *StreamHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &StreamHandler{
		openConversationUC: openConversationUC,
		listMessagesUC:     listMessagesUC,
		subscriber:         subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		logger: logger,
	}
}

type streamSession struct {
	caller    identity.Caller
	requestID string
	partnerID string
	after     string
}

// Stream handles GET /chat/:requestId/stream
// @Summary Stream conversation messages over a websocket
// @Tags Chat
// @Accept json
// @Produce json
// @Security Bearer
// @Param requestId path string true "Request ID"
// @Param after query string false "Resume cursor"
// @Success 101
// @Failure 401 {object} utils.APIResponse
// @Failure 403 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /chat/{requestId}/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	requestID, err := requiredParam(c, "requestId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	session := streamSession{
		caller:    middleware.GetCaller(c),
		requestID: requestID,
		partnerID: c.Query("partner_id"),
		after:     c.Query("after"),
	}

	// Authorization happens before the upgrade so failures are plain JSON errors.
	conv, err := h.openConversationUC.Execute(c.Request.Context(), usecases.OpenConversationQuery{
		Caller:    session.caller,
		RequestID: session.requestID,
		PartnerID: session.partnerID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	conversationID := conv.Conversation.ID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnw("failed to upgrade chat stream",
			"error", err,
			"request_id", requestID,
		)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	live := make(chan *dto.MessageDTO, streamLiveBuffer)
	ready := make(chan struct{})
	subErr := make(chan error, 1)
	goroutine.SafeGo(h.logger, "chat-stream-subscribe", func() {
		subErr <- h.subscriber.Subscribe(ctx, conversationID, ready, func(m *dto.MessageDTO) {
			select {
			case live <- m:
			case <-ctx.Done():
			}
		})
	})

	// Subscribing before the replay leaves no gap; overlap is removed by id.
	select {
	case <-ready:
	case err := <-subErr:
		h.logger.Errorw("failed to subscribe chat stream",
			"error", err,
			"conversation_id", conversationID,
		)
		h.closeWith(conn, websocket.CloseInternalServerErr, "subscription failed")
		return
	case <-ctx.Done():
		return
	}

	h.logger.Infow("chat stream opened",
		"conversation_id", conversationID,
		"user_id", session.caller.UserID(),
	)

	goroutine.SafeGo(h.logger, "chat-stream-read", func() {
		h.readPump(conn, cancel)
	})
	h.writePump(ctx, conn, session, live, subErr)

	h.logger.Debugw("chat stream closed",
		"conversation_id", conversationID,
		"user_id", session.caller.UserID(),
	)
}

// readPump only watches for close frames and pongs; clients send nothing.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(streamReadLimit)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnw("chat stream read error", "error", err)
			}
			return
		}
	}
}

func (h *StreamHandler) writePump(ctx context.Context, conn *websocket.Conn, session streamSession, live <-chan *dto.MessageDTO, subErr <-chan error) {
	sent := newRecentIDs(streamDedupeWindow)
	if err := h.replay(ctx, conn, session, sent); err != nil {
		return
	}

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeWith(conn, websocket.CloseNormalClosure, "")
			return

		case err := <-subErr:
			if err != nil && ctx.Err() == nil {
				h.logger.Warnw("chat stream subscription ended", "error", err)
			}
			h.closeWith(conn, websocket.CloseGoingAway, "stream ended")
			return

		case m := <-live:
			if sent.has(m.ID) {
				continue
			}
			if err := h.write(conn, m); err != nil {
				return
			}
			sent.add(m.ID)

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// replay sends the stored entries after the session cursor and records their
// ids in sent.
func (h *StreamHandler) replay(ctx context.Context, conn *websocket.Conn, session streamSession, sent *recentIDs) error {
	cursor := session.after
	for {
		page, err := h.listMessagesUC.Execute(ctx, usecases.ListMessagesQuery{
			Caller:    session.caller,
			RequestID: session.requestID,
			PartnerID: session.partnerID,
			After:     cursor,
			Limit:     constants.MaxMessageLimit,
		})
		if err != nil {
			h.logger.Warnw("chat stream replay failed",
				"error", err,
				"request_id", session.requestID,
			)
			h.closeWith(conn, websocket.ClosePolicyViolation, "replay failed")
			return err
		}
		for _, m := range page.Messages {
			if err := h.write(conn, m); err != nil {
				return err
			}
			sent.add(m.ID)
		}
		if page.Next == "" {
			return nil
		}
		cursor = page.Next
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, m *dto.MessageDTO) error {
	conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(m); err != nil {
		h.logger.Debugw("failed to write chat stream entry", "error", err, "message_id", m.ID)
		return err
	}
	return nil
}

func (h *StreamHandler) closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(streamWriteWait))
}

// recentIDs remembers the last n ids written to a stream.
type recentIDs struct {
	seen  map[string]struct{}
	order []string
	next  int
}

func newRecentIDs(n int) *recentIDs {
	return &recentIDs{
		seen:  make(map[string]struct{}, n),
		order: make([]string, 0, max(n, 1)),
	}
}

func (r *recentIDs) has(id string) bool {
	_, ok := r.seen[id]
	return ok
}

func (r *recentIDs) add(id string) {
	if r.has(id) {
		return
	}
	if len(r.order) < cap(r.order) {
		r.order = append(r.order, id)
	} else {
		delete(r.seen, r.order[r.next])
		r.order[r.next] = id
		r.next = (r.next + 1) % len(r.order)
	}
	r.seen[id] = struct{}{}
}
