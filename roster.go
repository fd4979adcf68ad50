package main

// Player is one connected member of a room. ConnID identifies the
// current websocket session and is reassigned on reconnect; PlayerID is
// the stable identity supplied by the client at join time.
type Player struct {
	ConnID   string
	PlayerID string
	Name     string
}

// RoomRosterStore persists the ordered roster of each room, keyed by
// room code. The in-memory implementation is the default; all access
// happens from the hub loop, so implementations need no locking of
// their own.
type RoomRosterStore interface {
	Roster(code string) []Player
	SetRoster(code string, roster []Player)
	Delete(code string)
}

type memRosterStore struct {
	rosters map[string][]Player
}

func newMemRosterStore() *memRosterStore {
	return &memRosterStore{rosters: make(map[string][]Player)}
}

func (s *memRosterStore) Roster(code string) []Player {
	return s.rosters[code]
}

func (s *memRosterStore) SetRoster(code string, roster []Player) {
	s.rosters[code] = roster
}

func (s *memRosterStore) Delete(code string) {
	delete(s.rosters, code)
}

// Registry tracks which players are connected to which room. Roster
// order is join order and determines turn rotation.
type Registry struct {
	store RoomRosterStore
}

func newRegistry(store RoomRosterStore) *Registry {
	return &Registry{store: store}
}

// Join adds p to the room's roster, or, if a player with the same
// PlayerID is already present, updates that entry's ConnID in place so
// a reconnect keeps its original turn position.
func (r *Registry) Join(code string, p Player) []Player {
	roster := r.store.Roster(code)

	for i := range roster {
		if roster[i].PlayerID == p.PlayerID {
			roster[i].ConnID = p.ConnID
			r.store.SetRoster(code, roster)
			return roster
		}
	}

	roster = append(roster, p)
	r.store.SetRoster(code, roster)
	return roster
}

// Leave removes the player whose ConnID matches. A stale disconnect
// (the player already rejoined under a new connection) matches nothing
// and is a no-op. When the roster empties, the room's roster entry is
// deleted; the caller is responsible for discarding the session.
func (r *Registry) Leave(code, connID string) (roster []Player, left Player, ok bool) {
	roster = r.store.Roster(code)

	idx := -1
	for i := range roster {
		if roster[i].ConnID == connID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return roster, Player{}, false
	}

	left = roster[idx]
	roster = append(roster[:idx], roster[idx+1:]...)

	if len(roster) == 0 {
		r.store.Delete(code)
	} else {
		r.store.SetRoster(code, roster)
	}

	return roster, left, true
}

func (r *Registry) RosterOf(code string) []Player {
	return r.store.Roster(code)
}
