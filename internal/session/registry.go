// Package session tracks which participants are connected to which game and
// fans server messages out to them.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

// Connection is one live client link. ID must be unique per connection for
// the lifetime of the process.
type Connection interface {
	ID() string
	Send(ctx context.Context, msg *chessdto.ServerMessage) error
}

// Recipient is a registered (participant, connection) pair.
type Recipient struct {
	Participant string
	Conn        Connection
}

// Registry maps game ids to their connected participants. The top-level
// lock only guards the game map; membership changes take the per-game lock.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*gameSessions
}

type gameSessions struct {
	mu      sync.Mutex
	members map[string]Connection
	dead    bool // removed from Registry.games; callers must re-fetch
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]*gameSessions)}
}

func (r *Registry) slot(gameID string, create bool) *gameSessions {
	r.mu.RLock()
	s := r.games[gameID]
	r.mu.RUnlock()
	if s != nil || !create {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s = r.games[gameID]; s == nil {
		s = &gameSessions{members: make(map[string]Connection)}
		r.games[gameID] = s
	}
	return s
}

// Register binds participant to conn in gameID, replacing any previous
// connection of that participant in the game.
func (r *Registry) Register(gameID, participant string, conn Connection) {
	for {
		s := r.slot(gameID, true)
		s.mu.Lock()
		if s.dead {
			s.mu.Unlock()
			continue
		}
		s.members[participant] = conn
		s.mu.Unlock()
		return
	}
}

// Unregister removes participant from gameID and reports whether it was
// registered.
func (r *Registry) Unregister(gameID, participant string) bool {
	return r.remove(gameID, participant, nil)
}

// UnregisterIf removes participant only while conn is still the registered
// connection, so a stale failure cannot evict a newer link.
func (r *Registry) UnregisterIf(gameID, participant string, conn Connection) bool {
	return r.remove(gameID, participant, conn)
}

// UnregisterConnection removes conn from every game it is registered in and
// returns the affected game ids.
func (r *Registry) UnregisterConnection(conn Connection) []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	var affected []string
	for _, id := range ids {
		for _, rc := range r.Recipients(id) {
			if rc.Conn.ID() == conn.ID() && r.remove(id, rc.Participant, conn) {
				affected = append(affected, id)
			}
		}
	}
	return affected
}

func (r *Registry) remove(gameID, participant string, conn Connection) bool {
	s := r.slot(gameID, false)
	if s == nil {
		return false
	}
	s.mu.Lock()
	cur, ok := s.members[participant]
	if !ok || (conn != nil && cur.ID() != conn.ID()) {
		s.mu.Unlock()
		return false
	}
	delete(s.members, participant)
	empty := len(s.members) == 0
	s.mu.Unlock()

	if empty {
		r.mu.Lock()
		s.mu.Lock()
		if len(s.members) == 0 && !s.dead && r.games[gameID] == s {
			s.dead = true
			delete(r.games, gameID)
		}
		s.mu.Unlock()
		r.mu.Unlock()
	}
	return true
}

// Lookup returns the connection registered for participant in gameID.
func (r *Registry) Lookup(gameID, participant string) (Connection, bool) {
	s := r.slot(gameID, false)
	if s == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.members[participant]
	return c, ok
}

// Recipients snapshots the members of gameID, sorted by participant.
func (r *Registry) Recipients(gameID string) []Recipient {
	s := r.slot(gameID, false)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	out := make([]Recipient, 0, len(s.members))
	for p, c := range s.members {
		out = append(out, Recipient{Participant: p, Conn: c})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Participant < out[j].Participant })
	return out
}

// Games returns the number of games with at least one member.
func (r *Registry) Games() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}
