package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Messages coming from clients. A single struct covers every inbound
// event; unused fields are left at their zero value.
type ClientMessage struct {
	Type     string  `json:"type"`     // "join", "draw", "message" or "guess"
	Room     string  `json:"room"`     // room code
	PlayerID string  `json:"playerId"` // stable identity, supplied at join
	Name     string  `json:"name"`     // display name, supplied at join
	Text     string  `json:"text"`     // chat line or guess
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    *string `json:"color"`
	Eraser   bool    `json:"eraser"`
}

type Client struct {
	conn    *websocket.Conn
	send    chan any
	connID  string
	limiter *rate.Limiter

	// Connection context, bound when the join event lands. Only the
	// hub loop reads or writes these.
	room     string
	playerID string
	name     string
	joined   bool
}

type envelope struct {
	client *Client
	msg    ClientMessage
}

// Hub owns all room state and processes every inbound event, for every
// room, one at a time on a single goroutine. That serialization is
// what keeps score updates and drawer rotation atomic.
type Hub struct {
	log      zerolog.Logger
	game     *Game
	registry *Registry

	clients map[*Client]bool
	rooms   map[string]map[*Client]bool

	register chan *Client
	unreg    chan *Client
	events   chan envelope
}

func newHub(log zerolog.Logger, registry *Registry, game *Game) *Hub {
	return &Hub{
		log:      log,
		game:     game,
		registry: registry,
		clients:  make(map[*Client]bool),
		rooms:    make(map[string]map[*Client]bool),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		events:   make(chan envelope, 256),
	}
}

func (h *Hub) run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unreg:
			h.handleDisconnect(c)

		case ev := <-h.events:
			switch ev.msg.Type {
			case "join":
				h.handleJoin(ev.client, ev.msg)
			case "draw":
				h.handleDraw(ev.client, ev.msg)
			case "message":
				h.handleChat(ev.client, ev.msg)
			case "guess":
				h.handleGuess(ev.client, ev.msg)
			}

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) handleJoin(c *Client, msg ClientMessage) {
	if msg.Room == "" || msg.PlayerID == "" || msg.Name == "" {
		return
	}
	if c.joined || !h.clients[c] {
		return
	}

	c.room = msg.Room
	c.playerID = msg.PlayerID
	c.name = msg.Name
	c.joined = true

	members := h.rooms[c.room]
	if members == nil {
		members = make(map[*Client]bool)
		h.rooms[c.room] = members
	}
	members[c] = true

	roster := h.registry.Join(c.room, Player{ConnID: c.connID, PlayerID: c.playerID, Name: c.name})
	sess := h.game.EnsureSession(c.room)

	h.log.Debug().Str("room", c.room).Str("player", c.name).Msg("player joined")

	bs := []Broadcast{toRoom(updatePlayers(roster))}

	switch {
	case len(roster) < minPlayers:
		bs = append(bs, toRoom(WaitingForPlayersMessage{Type: "waitingForPlayers", Count: len(roster)}))
	case !sess.Started:
		if started := h.game.TryStart(c.room); len(started) > 0 {
			h.log.Info().Str("room", c.room).Msg("game started")
			bs = append(bs, started...)
		}
	default:
		bs = append(bs, h.game.ReplayFor(c.room, c.connID)...)
	}

	h.deliver(c.room, bs)
}

func (h *Hub) handleDisconnect(c *Client) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}

	if !c.joined {
		return
	}

	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, c.room)
		}
	}

	// A stale disconnect after a reconnect matches no roster entry and
	// falls through without broadcasts.
	roster, left, ok := h.registry.Leave(c.room, c.connID)
	if !ok {
		return
	}

	h.log.Debug().Str("room", c.room).Str("player", left.Name).Msg("player left")

	if len(roster) == 0 {
		h.game.DiscardRoom(c.room)
		return
	}

	bs := []Broadcast{toRoom(updatePlayers(roster))}
	bs = append(bs, h.game.OnRosterChange(c.room)...)
	h.deliver(c.room, bs)
}

// handleDraw relays stroke points verbatim to everyone else in the
// room. Nothing is buffered server-side.
func (h *Hub) handleDraw(c *Client, msg ClientMessage) {
	if !c.joined {
		return
	}

	h.deliver(c.room, []Broadcast{
		toRoomExcept(c.connID, DrawMessage{Type: "draw", X: msg.X, Y: msg.Y, Color: msg.Color, Eraser: msg.Eraser}),
	})
}

// handleChat relays the line to the whole room, then submits the same
// text as a guess. The state machine ignores guesses from the drawer,
// so the two paths stay independent.
func (h *Hub) handleChat(c *Client, msg ClientMessage) {
	if !c.joined {
		return
	}

	bs := []Broadcast{toRoom(ChatMessage{Type: "message", Text: c.name + ": " + msg.Text})}
	bs = append(bs, h.submitGuess(c, msg.Text)...)
	h.deliver(c.room, bs)
}

func (h *Hub) handleGuess(c *Client, msg ClientMessage) {
	if !c.joined {
		return
	}

	h.deliver(c.room, h.submitGuess(c, msg.Text))
}

func (h *Hub) submitGuess(c *Client, text string) []Broadcast {
	bs := h.game.SubmitGuess(c.room, c.playerID, text)

	for _, b := range bs {
		if msg, ok := b.Msg.(GameOverMessage); ok {
			h.log.Info().Str("room", c.room).Str("winner", msg.WinnerName).Msg("game over")
		}
	}

	return bs
}

// deliver executes broadcast instructions against the room's live
// connections.
func (h *Hub) deliver(room string, bs []Broadcast) {
	members := h.rooms[room]

	for _, b := range bs {
		switch b.Audience {
		case ToRoom:
			for c := range members {
				h.push(c, b.Msg)
			}
		case ToConn:
			for c := range members {
				if c.connID == b.ConnID {
					h.push(c, b.Msg)
					break
				}
			}
		case ToRoomExceptConn:
			for c := range members {
				if c.connID != b.ConnID {
					h.push(c, b.Msg)
				}
			}
		}
	}
}

func (h *Hub) push(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

// drop disconnects a slow or shutting-down client. Its roster entry
// stays until the transport-level disconnect arrives through unreg.
func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}

	delete(h.clients, c)
	if members, ok := h.rooms[c.room]; ok {
		delete(members, c)
	}
	close(c.send)
}

func updatePlayers(roster []Player) UpdatePlayersMessage {
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, p.Name)
	}
	return UpdatePlayersMessage{Type: "updatePlayers", Players: names}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

func serveWS(log zerolog.Logger, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		log.Debug().Str("remote", realIP(r)).Msg("websocket connected")

		client := &Client{
			conn:   conn,
			send:   make(chan any, 64),
			connID: newConnID(),
			// Chat and guesses are rate limited per connection; draw
			// strokes are exempt.
			limiter: rate.NewLimiter(5, 10),
		}

		h.register <- client

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unreg <- c
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join", "draw":
		case "message", "guess":
			if !c.limiter.Allow() {
				continue
			}
		default:
			// ignore unknown types
			continue
		}

		h.events <- envelope{client: c, msg: msg}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// registerDrawGame wires the in-memory game core and its routes:
//   - /draw/:roomcode    → HTML client
//   - /draw/:roomcode/qr → PNG QR code for the room URL
//   - /ws                → shared websocket endpoint (room chosen at join)
func registerDrawGame(ctx context.Context, cfg *Config, log zerolog.Logger, mux *httprouter.Router) {
	registry := newRegistry(newMemRosterStore())
	game := newGame(registry, newMemSessionStore(), cfg.winningScore, pickRandomWord)
	hub := newHub(log, registry, game)
	go hub.run(ctx)

	mux.GET(cfg.prefix+"/draw/:roomcode", serveGamePage(cfg))
	mux.GET(cfg.prefix+"/draw/:roomcode/qr", qrHandler)
	mux.GET(cfg.prefix+"/ws", serveWS(log, hub))
}
