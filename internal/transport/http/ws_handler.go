package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     logger.OrNop(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Topic     string `json:"topic"`
	SetNumber int    `json:"setNumber"`
}

type answerPayload struct {
	Option *int `json:"option"`
}

type completedPayload struct {
	Result   *domain.QuizResult     `json:"result"`
	Progress *domain.ProgressReport `json:"progress,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connection is the per-socket state: one outbound queue drained by a single
// writer, and at most one forwarded session subscription.
type connection struct {
	send         chan outboundMessage[any]
	closeSignals chan struct{}

	mu          sync.Mutex
	stopForward func()
}

func (c *connection) push(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.closeSignals:
	}
}

func (c *connection) fail(err error) {
	c.push("error", errorPayload{Message: err.Error()})
}

// forward relays session views as state messages until the subscription ends.
func (c *connection) forward(updates <-chan domain.SessionView, cancel func()) {
	c.stop()
	done := make(chan struct{})
	c.mu.Lock()
	c.stopForward = func() {
		cancel()
		<-done
	}
	c.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				c.push("state", view)
			case <-c.closeSignals:
				return
			}
		}
	}()
}

func (c *connection) stop() {
	c.mu.Lock()
	stop := c.stopForward
	c.stopForward = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learnerId")
	displayName := r.URL.Query().Get("name")
	if learnerID == "" {
		http.Error(w, "missing learnerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if displayName != "" {
		if err := h.service.Register(ctx, learnerID, displayName); err != nil {
			h.log.Warn("register learner failed", "learner", learnerID, "error", err)
		}
	}

	c := &connection{
		send:         make(chan outboundMessage[any], 16),
		closeSignals: make(chan struct{}),
	}
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", "learner", learnerID, "error", err)
				conn.Close()
				// keep draining so producers never block on a dead socket
				for range c.send {
				}
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(ctx, c, learnerID, inbound)
	}

	// Leaving the socket abandons any session still in progress.
	if err := h.service.Exit(context.Background(), learnerID); err == nil {
		h.log.Info("session abandoned on disconnect", "learner", learnerID)
	}
	close(c.closeSignals)
	c.stop()
	close(c.send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, c *connection, learnerID string, inbound inboundMessage) {
	switch inbound.Type {
	case "start":
		var payload startPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Topic == "" {
			c.fail(errors.New("invalid start payload"))
			return
		}
		if payload.SetNumber == 0 {
			payload.SetNumber = 1
		}
		c.push("loading", payload)
		if _, err := h.service.StartSession(ctx, learnerID, payload.Topic, payload.SetNumber); err != nil {
			c.fail(err)
			return
		}
		updates, cancel, err := h.service.Subscribe(ctx, learnerID)
		if err != nil {
			c.fail(err)
			return
		}
		c.forward(updates, cancel)

	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Option == nil {
			c.fail(errors.New("invalid answer payload"))
			return
		}
		outcome, err := h.service.Answer(ctx, learnerID, *payload.Option)
		if errors.Is(err, domain.ErrAlreadyAnswered) {
			return
		}
		if err != nil {
			c.fail(err)
			return
		}
		c.push("answerResult", outcome)

	case "next":
		done, err := h.service.Next(ctx, learnerID)
		if done.Result == nil {
			if err != nil {
				c.fail(err)
			}
			return
		}
		if err != nil {
			h.log.Warn("completion not fully persisted", "learner", learnerID, "error", err)
		}
		c.stop()
		c.push("completed", completedPayload{Result: done.Result, Progress: done.Progress})

	case "exit":
		if err := h.service.Exit(ctx, learnerID); err != nil {
			c.fail(err)
			return
		}
		c.stop()
		c.push("exited", struct{}{})

	default:
		c.fail(errors.New("unsupported message type"))
	}
}
