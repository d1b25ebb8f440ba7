package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/festapp/telao/internal/game"
)

// inboundEvent is the wire shape for client messages: an event name plus
// that event's payload, decoded per event in dispatch. Payloads that fail
// to decode are dropped without a broadcast.
type inboundEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// stateSyncFrame is the only server-to-client message: the full snapshot,
// re-sent after every accepted mutation.
type stateSyncFrame struct {
	Event   string        `json:"event"`
	Payload game.Snapshot `json:"payload"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans the canonical snapshot out to every connected viewer (TV,
// remote, admin). All mutations funnel through one run loop, so events
// are applied and broadcast strictly in arrival order and no client ever
// sees a partial mutation.
type Hub struct {
	engine *game.Engine
	logger *slog.Logger

	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	events     chan inboundEvent
	notify     chan struct{}
}

func NewHub(engine *game.Engine, logger *slog.Logger) *Hub {
	return &Hub{
		engine:     engine,
		logger:     logger,
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		events:     make(chan inboundEvent),
		notify:     make(chan struct{}, 8),
	}
}

// Run processes registrations, inbound events, and external broadcast
// requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				c.conn.Close()
				delete(h.clients, c)
			}
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = true
			// New connections get the snapshot once, to this client only.
			if frame, err := h.snapshotFrame(ctx); err == nil {
				c.send <- frame
			} else {
				h.logger.Error("snapshot for new connection failed", "error", err)
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case ev := <-h.events:
			if h.dispatch(ctx, ev) {
				h.broadcast(ctx)
			}

		case <-h.notify:
			h.broadcast(ctx)
		}
	}
}

// Broadcast asks the run loop to push a fresh snapshot to every client.
// Used by the HTTP handlers after they mutate game state, so admin edits
// reach open TVs without waiting for the next socket event.
func (h *Hub) Broadcast() {
	h.notify <- struct{}{}
}

// dispatch decodes and applies one inbound event. Returns true when the
// state machine accepted the mutation and a broadcast is due.
func (h *Hub) dispatch(ctx context.Context, ev inboundEvent) bool {
	var applied bool
	var err error

	switch ev.Event {
	case "nextQuestion":
		applied, err = h.engine.Advance(ctx, 1)
	case "prevQuestion":
		applied, err = h.engine.Advance(ctx, -1)
	case "setQuestionIndex":
		var index int
		if json.Unmarshal(ev.Payload, &index) != nil {
			h.logger.Debug("dropping malformed payload", "event", ev.Event)
			return false
		}
		applied, err = h.engine.JumpTo(ctx, index)
	case "updateQuestions":
		var input []game.QuestionInput
		if json.Unmarshal(ev.Payload, &input) != nil || input == nil {
			h.logger.Debug("dropping malformed payload", "event", ev.Event)
			return false
		}
		_, applied, err = h.engine.ReplaceQuestions(ctx, input)
	case "selectElement":
		var element string
		if json.Unmarshal(ev.Payload, &element) != nil {
			h.logger.Debug("dropping malformed payload", "event", ev.Event)
			return false
		}
		applied, err = h.engine.SelectElement(ctx, element)
	case "resetGame":
		applied, err = h.engine.ResetGame(ctx)
	case "audio:setTrack":
		var track *string
		if json.Unmarshal(ev.Payload, &track) != nil {
			h.logger.Debug("dropping malformed payload", "event", ev.Event)
			return false
		}
		applied, err = h.engine.SetAudioTrack(ctx, track)
	case "audio:setVolume":
		var volume float64
		if json.Unmarshal(ev.Payload, &volume) != nil {
			h.logger.Debug("dropping malformed payload", "event", ev.Event)
			return false
		}
		applied, err = h.engine.SetVolume(ctx, volume)
	case "audio:playPause":
		applied, err = h.engine.TogglePlay(ctx)
	case "debug:populateTestData":
		applied, err = h.engine.PopulateDebugData(ctx)
	default:
		h.logger.Debug("ignoring unknown event", "event", ev.Event)
		return false
	}

	if err != nil {
		h.logger.Error("event failed", "event", ev.Event, "error", err)
		return false
	}
	return applied
}

func (h *Hub) snapshotFrame(ctx context.Context) ([]byte, error) {
	snap, err := h.engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stateSyncFrame{Event: "stateSync", Payload: snap})
}

// broadcast recomputes the snapshot once and sends the identical frame to
// every connected client, the originator included.
func (h *Hub) broadcast(ctx context.Context) {
	frame, err := h.snapshotFrame(ctx)
	if err != nil {
		h.logger.Error("snapshot failed", "error", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			// Slow or dead client, drop it.
			delete(h.clients, c)
			close(c.send)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and wires the connection into the hub.
func (h *Hub) ServeWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("websocket upgrade failed", "error", err)
			return
		}

		client := &wsClient{
			conn: conn,
			send: make(chan []byte, 16),
		}
		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

func (c *wsClient) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.Event == "" {
			h.logger.Debug("dropping unreadable frame", "error", err)
			continue
		}
		h.events <- ev
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
