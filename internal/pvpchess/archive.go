package pvpchess

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/park285/Cheese-PvP-chess/internal/domain"
)

// Archive stores finished games beyond the live store's TTL.
type Archive interface {
	SaveResult(ctx context.Context, r *Record) error
	Recent(ctx context.Context, participant string, limit int) ([]*domain.ArchivedGame, error)
}

// Archived converts a finished record into its archive row, PGN included.
func Archived(r *Record) *domain.ArchivedGame {
	d := r.UpdatedAt.Sub(r.CreatedAt)
	if d < 0 {
		d = 0
	}
	return &domain.ArchivedGame{
		GameID:    r.ID,
		WhiteID:   r.WhiteID,
		BlackID:   r.BlackID,
		Result:    r.Outcome,
		Method:    r.Method(),
		MovesUCI:  append([]string(nil), r.MovesUCI...),
		MovesSAN:  append([]string(nil), r.MovesSAN...),
		PGN:       buildPGN(r, mapResultToPGN(r.Outcome), r.Method()),
		StartedAt: r.CreatedAt,
		EndedAt:   r.UpdatedAt,
		Duration:  d,
	}
}

func mapResultToPGN(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case OutcomeWhite:
		return "1-0"
	case OutcomeBlack:
		return "0-1"
	case OutcomeDraw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

func buildPGN(r *Record, pgnResult, method string) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	date := r.UpdatedAt
	if date.IsZero() {
		date = time.Now()
	}
	b.WriteString("[Event \"PvP\"]\n")
	b.WriteString("[Site \"Cheese\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(r.WhiteID)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(r.BlackID)))
	if strings.TrimSpace(method) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(method))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", pgnResult))

	for i := 0; i < len(r.MovesSAN); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(r.MovesSAN[i])))
		if i+1 < len(r.MovesSAN) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(r.MovesSAN[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(pgnResult)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

// MemoryArchive is the Archive used when no database is configured.
type MemoryArchive struct {
	mu       sync.RWMutex
	byID     map[string]*domain.ArchivedGame
	byPlayer map[string][]*domain.ArchivedGame
}

func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		byID:     make(map[string]*domain.ArchivedGame),
		byPlayer: make(map[string][]*domain.ArchivedGame),
	}
}

// SaveResult is idempotent per game id.
func (m *MemoryArchive) SaveResult(_ context.Context, r *Record) error {
	if r == nil || !r.Status.Terminal() {
		return nil
	}
	row := Archived(r)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[row.GameID]; exists {
		return nil
	}
	m.byID[row.GameID] = row
	for _, p := range []string{row.WhiteID, row.BlackID} {
		if p != "" {
			m.byPlayer[p] = append(m.byPlayer[p], row)
		}
	}
	return nil
}

func (m *MemoryArchive) Recent(_ context.Context, participant string, limit int) ([]*domain.ArchivedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := append([]*domain.ArchivedGame(nil), m.byPlayer[participant]...)
	sort.Slice(items, func(i, j int) bool { return items[i].EndedAt.After(items[j].EndedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
