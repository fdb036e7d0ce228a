/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/taboo/games/taboo"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 32
)

// Messages coming from clients
type ClientMessage struct {
	Type string `json:"type"`           // "join", "start_game", "guess", "skip_card", "report_live", "report_review", "play_again"
	Name string `json:"name,omitempty"` // join
	Text string `json:"text,omitempty"` // guess
}

// SnapshotMessage carries the full state as seen by one client.
type SnapshotMessage struct {
	Type  string         `json:"type"` // "snapshot"
	State taboo.Snapshot `json:"state"`
}

// EventMessage wraps a one-shot game event.
type EventMessage struct {
	Type string `json:"type"` // "event"
	taboo.Event
}

// SimpleMessage is sent to a single client when its action was rejected.
type SimpleMessage struct {
	Type    string `json:"type"` // "name_taken", "game_error"
	Message string `json:"message"`
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

type actionRequest struct {
	client *Client
	msg    ClientMessage
}

// Hub connects websocket clients to the one shared game.
type Hub struct {
	cfg  *Config
	game *taboo.Controller

	mu      sync.Mutex
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	actions  chan actionRequest
	done     chan struct{}
}

func newHub(cfg *Config, source taboo.CardSource) *Hub {
	h := &Hub{
		cfg:      cfg,
		clients:  make(map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		actions:  make(chan actionRequest),
		done:     make(chan struct{}),
	}

	h.game = taboo.NewController(source, taboo.Config{
		TurnDuration:   cfg.turnDuration,
		ReviewDuration: cfg.reviewDuration,
		ReviewPause:    cfg.reviewPause,
		MaxRounds:      cfg.rounds,
		Notifier:       h,
		Logf: func(format string, args ...any) {
			logf(cfg, "GAMES: "+format, args...)
		},
	})

	return h
}

func (h *Hub) run(ctx context.Context) error {
	defer close(h.done)

	ticker := time.NewTicker(h.cfg.broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.sendLocked(c, SnapshotMessage{Type: "snapshot", State: h.game.Snapshot(c.id)})
			h.mu.Unlock()

			logf(h.cfg, "GAMES: Client %s connected", c.id)

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

			if err := h.game.Leave(c.id); err == nil {
				h.broadcastSnapshots()
			}

			logf(h.cfg, "GAMES: Client %s disconnected", c.id)

		case ar := <-h.actions:
			h.handleAction(ar)

			h.broadcastSnapshots()

		case <-ticker.C:
			h.broadcastSnapshots()

		case <-ctx.Done():
			h.closeAll()

			return nil
		}
	}
}

func (h *Hub) handleAction(ar actionRequest) {
	c := ar.client
	msg := ar.msg

	var err error

	switch msg.Type {
	case "join":
		err = h.game.Join(c.id, msg.Name)
	case "start_game":
		err = h.game.StartGame(c.id)
	case "guess":
		err = h.game.Guess(c.id, msg.Text)
	case "skip_card":
		err = h.game.SkipCard(c.id)
	case "report_live":
		err = h.game.ReportLive(c.id)
	case "report_review":
		err = h.game.ReportReview(c.id)
	case "play_again":
		err = h.game.PlayAgain(c.id)
	default:
		return
	}

	if err == nil {
		return
	}

	reply := SimpleMessage{Type: "game_error", Message: err.Error()}
	if errors.Is(err, taboo.ErrNameTaken) {
		reply.Type = "name_taken"
	}

	h.mu.Lock()
	if h.clients[c] {
		h.sendLocked(c, reply)
	}
	h.mu.Unlock()
}

// Notify fans game events out to every client. It may be called from the
// hub loop or from a game timer.
func (h *Hub) Notify(events []taboo.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range events {
		for client := range h.clients {
			h.sendLocked(client, EventMessage{Type: "event", Event: e})
		}
	}
}

// broadcastSnapshots sends each client its own view of the game.
func (h *Hub) broadcastSnapshots() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		h.sendLocked(client, SnapshotMessage{Type: "snapshot", State: h.game.Snapshot(client.id)})
	}
}

// sendLocked drops clients that are too slow to keep up. h.mu must be held.
func (h *Hub) sendLocked(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "SERVE: Websocket upgrade for %s failed: %v", realIP(r), err)

			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, sendBuffer),
			id:   uuid.NewString(),
		}

		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()

			return
		}

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.actions <- actionRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)

				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// qrHandler encodes the join URL for the game as a PNG.
func qrHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr") + "/"

		const qrSize = 320
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

func registerTabooGame(cfg *Config, mux *httprouter.Router, h *Hub) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, h))

	mux.GET(cfg.prefix+"/qr", qrHandler(cfg))
}
