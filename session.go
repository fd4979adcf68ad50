package main

import (
	"strings"
)

// Minimum connected players before a game can begin.
const minPlayers = 2

// Messages sent to clients. Each carries a type discriminator so the
// browser client can switch on it.

type RosterEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type UpdatePlayersMessage struct {
	Type    string   `json:"type"`    // "updatePlayers"
	Players []string `json:"players"` // display names, join order
}

type WaitingForPlayersMessage struct {
	Type  string `json:"type"` // "waitingForPlayers"
	Count int    `json:"count"`
}

type GameStartMessage struct {
	Type string `json:"type"` // "gameStart"
}

type GameStateMessage struct {
	Type       string `json:"type"` // "gameState"
	DrawerID   string `json:"drawerId"`
	DrawerName string `json:"drawerName"`
}

// Sent to the drawer's connection only.
type DrawerWordMessage struct {
	Type string `json:"type"` // "drawerWord"
	Word string `json:"word"`
}

type ScoreUpdateMessage struct {
	Type    string         `json:"type"` // "scoreUpdate"
	Scores  map[string]int `json:"scores"`
	Players []RosterEntry  `json:"players"`
}

type GuessedCorrectMessage struct {
	Type        string `json:"type"` // "guessedCorrect"
	GuesserName string `json:"guesserName"`
	Word        string `json:"word"`
}

type GameOverMessage struct {
	Type       string `json:"type"` // "gameOver"
	WinnerName string `json:"winnerName"`
}

type GameEndNotEnoughPlayersMessage struct {
	Type string `json:"type"` // "gameEndNotEnoughPlayers"
}

type DrawMessage struct {
	Type   string  `json:"type"` // "draw"
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  *string `json:"color"`
	Eraser bool    `json:"eraser"`
}

type ChatMessage struct {
	Type string `json:"type"` // "message"
	Text string `json:"text"`
}

// Audience selects who receives a broadcast within a room.
type Audience int

const (
	ToRoom Audience = iota
	ToConn
	ToRoomExceptConn
)

// Broadcast is one delivery instruction. The state machine returns
// these as plain data; the hub executes them against live connections.
type Broadcast struct {
	Audience Audience
	ConnID   string // target (ToConn) or excluded (ToRoomExceptConn) connection
	Msg      any
}

func toRoom(msg any) Broadcast {
	return Broadcast{Audience: ToRoom, Msg: msg}
}

func toConn(connID string, msg any) Broadcast {
	return Broadcast{Audience: ToConn, ConnID: connID, Msg: msg}
}

func toRoomExcept(connID string, msg any) Broadcast {
	return Broadcast{Audience: ToRoomExceptConn, ConnID: connID, Msg: msg}
}

// Session is the per-room game progress. PlayerIDs and Names are a
// snapshot taken at game start: a player disconnecting mid-game stays
// in the snapshot (and keeps accruing in Scores) even though they drop
// out of the live roster.
type Session struct {
	PlayerIDs   []string
	Names       map[string]string
	DrawerIndex int
	Word        string
	Scores      map[string]int
	Started     bool
}

// GameSessionStore persists per-room sessions, keyed by room code.
type GameSessionStore interface {
	Session(code string) (*Session, bool)
	SetSession(code string, s *Session)
	Delete(code string)
}

type memSessionStore struct {
	sessions map[string]*Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*Session)}
}

func (s *memSessionStore) Session(code string) (*Session, bool) {
	sess, ok := s.sessions[code]
	return sess, ok
}

func (s *memSessionStore) SetSession(code string, sess *Session) {
	s.sessions[code] = sess
}

func (s *memSessionStore) Delete(code string) {
	delete(s.sessions, code)
}

// Game applies gameplay transitions for every room. It never touches a
// connection itself; each operation returns the broadcasts it wants
// delivered, which keeps the rules testable without a transport.
type Game struct {
	registry     *Registry
	sessions     GameSessionStore
	winningScore int
	pickWord     func() string
}

func newGame(registry *Registry, sessions GameSessionStore, winningScore int, pickWord func() string) *Game {
	return &Game{
		registry:     registry,
		sessions:     sessions,
		winningScore: winningScore,
		pickWord:     pickWord,
	}
}

// EnsureSession creates the room's idle session on first join.
func (g *Game) EnsureSession(code string) *Session {
	if sess, ok := g.sessions.Session(code); ok {
		return sess
	}
	sess := &Session{Scores: make(map[string]int)}
	g.sessions.SetSession(code, sess)
	return sess
}

// DiscardRoom drops all session state once a room has emptied.
func (g *Game) DiscardRoom(code string) {
	g.sessions.Delete(code)
}

// TryStart begins a game if one is not already running and enough
// players are connected. The roster at this moment becomes the turn
// rotation for the whole game.
func (g *Game) TryStart(code string) []Broadcast {
	sess, ok := g.sessions.Session(code)
	if !ok {
		return nil
	}

	roster := g.registry.RosterOf(code)
	if sess.Started || len(roster) < minPlayers {
		return nil
	}

	sess.PlayerIDs = make([]string, 0, len(roster))
	sess.Names = make(map[string]string, len(roster))
	sess.Scores = make(map[string]int, len(roster))
	for _, p := range roster {
		sess.PlayerIDs = append(sess.PlayerIDs, p.PlayerID)
		sess.Names[p.PlayerID] = p.Name
		sess.Scores[p.PlayerID] = 0
	}
	sess.DrawerIndex = 0
	sess.Word = g.pickWord()
	sess.Started = true
	g.sessions.SetSession(code, sess)

	drawer := roster[0]

	return []Broadcast{
		toRoom(GameStartMessage{Type: "gameStart"}),
		toRoom(GameStateMessage{Type: "gameState", DrawerID: drawer.PlayerID, DrawerName: drawer.Name}),
		toConn(drawer.ConnID, DrawerWordMessage{Type: "drawerWord", Word: sess.Word}),
		toRoom(scoreUpdate(sess, roster)),
	}
}

// SubmitGuess evaluates text against the current word. Guesses while
// no game is running, or from the current drawer, are ignored, as are
// mismatches; the raw chat line was already relayed separately.
func (g *Game) SubmitGuess(code, playerID, text string) []Broadcast {
	sess, ok := g.sessions.Session(code)
	if !ok || !sess.Started {
		return nil
	}

	drawerID := sess.PlayerIDs[sess.DrawerIndex]
	if playerID == drawerID {
		return nil
	}

	if !strings.EqualFold(strings.TrimSpace(text), sess.Word) {
		return nil
	}

	roster := g.registry.RosterOf(code)
	guesser, here := findByPlayerID(roster, playerID)
	if !here {
		// Guess raced with the guesser's own disconnect.
		return nil
	}

	word := sess.Word

	sess.Scores[playerID] += 10
	if _, drawerHere := findByPlayerID(roster, drawerID); drawerHere {
		sess.Scores[drawerID] += 5
	}

	out := []Broadcast{
		toRoom(GuessedCorrectMessage{Type: "guessedCorrect", GuesserName: guesser.Name, Word: word}),
		toRoom(scoreUpdate(sess, roster)),
	}

	if sess.Scores[playerID] >= g.winningScore {
		sess.Started = false
		g.sessions.SetSession(code, sess)
		return append(out, toRoom(GameOverMessage{Type: "gameOver", WinnerName: guesser.Name}))
	}

	// Rotation walks the start-time snapshot, not the live roster, so
	// a mid-game disconnect cannot skip anyone's turn.
	sess.DrawerIndex = (sess.DrawerIndex + 1) % len(sess.PlayerIDs)
	sess.Word = g.pickWord()
	nextID := sess.PlayerIDs[sess.DrawerIndex]
	g.sessions.SetSession(code, sess)

	out = append(out, toRoom(GameStateMessage{Type: "gameState", DrawerID: nextID, DrawerName: sess.Names[nextID]}))

	// The new drawer may have disconnected; the word then goes
	// undelivered until a further correct guess rotates past them.
	if next, nextHere := findByPlayerID(roster, nextID); nextHere {
		out = append(out, toConn(next.ConnID, DrawerWordMessage{Type: "drawerWord", Word: sess.Word}))
	}

	return out
}

// OnRosterChange reacts to joins and disconnects: an active game ends
// when the room drops below the minimum, and an idle room starts as
// soon as it reaches it.
func (g *Game) OnRosterChange(code string) []Broadcast {
	sess, ok := g.sessions.Session(code)
	if !ok {
		return nil
	}

	size := len(g.registry.RosterOf(code))

	switch {
	case sess.Started && size < minPlayers:
		sess.Started = false
		g.sessions.SetSession(code, sess)
		return []Broadcast{toRoom(GameEndNotEnoughPlayersMessage{Type: "gameEndNotEnoughPlayers"})}
	case !sess.Started && size >= minPlayers:
		return g.TryStart(code)
	}

	return nil
}

// ReplayFor synchronizes a connection that joined (or rejoined) while
// a game is already running.
func (g *Game) ReplayFor(code, connID string) []Broadcast {
	sess, ok := g.sessions.Session(code)
	if !ok || !sess.Started {
		return nil
	}

	drawerID := sess.PlayerIDs[sess.DrawerIndex]

	return []Broadcast{
		toConn(connID, GameStartMessage{Type: "gameStart"}),
		toConn(connID, GameStateMessage{Type: "gameState", DrawerID: drawerID, DrawerName: sess.Names[drawerID]}),
		toConn(connID, scoreUpdate(sess, g.registry.RosterOf(code))),
	}
}

func scoreUpdate(sess *Session, roster []Player) ScoreUpdateMessage {
	players := make([]RosterEntry, 0, len(roster))
	for _, p := range roster {
		players = append(players, RosterEntry{PlayerID: p.PlayerID, Name: p.Name})
	}

	scores := make(map[string]int, len(sess.Scores))
	for id, score := range sess.Scores {
		scores[id] = score
	}

	return ScoreUpdateMessage{Type: "scoreUpdate", Scores: scores, Players: players}
}

func findByPlayerID(roster []Player, playerID string) (Player, bool) {
	for _, p := range roster {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return Player{}, false
}
