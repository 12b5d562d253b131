package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/Cheese-PvP-chess/internal/metrics"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

// Broadcaster delivers messages to registered connections. Sends happen
// outside every registry lock; a failed recipient is unregistered and the
// rest still receive the message.
type Broadcaster struct {
	reg     *Registry
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewBroadcaster(reg *Registry, log *zap.Logger, m *metrics.Metrics) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{reg: reg, log: log, metrics: m}
}

// Broadcast sends msg to every participant of gameID except exclude ("" for
// nobody) and returns how many sends succeeded.
func (b *Broadcaster) Broadcast(ctx context.Context, gameID, exclude string, msg *chessdto.ServerMessage) int {
	delivered := 0
	for _, rc := range b.reg.Recipients(gameID) {
		if exclude != "" && rc.Participant == exclude {
			continue
		}
		if b.send(ctx, gameID, rc.Participant, rc.Conn, msg) {
			delivered++
		}
	}
	return delivered
}

// NotifyOne sends msg to participant only. An unregistered participant is a
// silent no-op.
func (b *Broadcaster) NotifyOne(ctx context.Context, gameID, participant string, msg *chessdto.ServerMessage) bool {
	conn, ok := b.reg.Lookup(gameID, participant)
	if !ok {
		return false
	}
	return b.send(ctx, gameID, participant, conn, msg)
}

func (b *Broadcaster) send(ctx context.Context, gameID, participant string, conn Connection, msg *chessdto.ServerMessage) bool {
	err := conn.Send(ctx, msg)
	if err == nil {
		return true
	}
	b.reg.UnregisterIf(gameID, participant, conn)
	b.metrics.SendFailed()
	b.log.Warn("broadcast_send_failed",
		zap.String("game_id", gameID),
		zap.String("participant", participant),
		zap.String("conn_id", conn.ID()),
		zap.String("msg_type", string(msg.Type)),
		zap.Error(err),
	)
	return false
}
