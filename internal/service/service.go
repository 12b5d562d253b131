// Package service is the session layer: it authenticates commands, applies
// them to stored games under a per-game lock and fans the results out to
// every connected participant.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-PvP-chess/internal/auth"
	"github.com/park285/Cheese-PvP-chess/internal/chess"
	"github.com/park285/Cheese-PvP-chess/internal/metrics"
	"github.com/park285/Cheese-PvP-chess/internal/msgcat"
	"github.com/park285/Cheese-PvP-chess/internal/notation"
	"github.com/park285/Cheese-PvP-chess/internal/pvpchess"
	"github.com/park285/Cheese-PvP-chess/internal/render"
	"github.com/park285/Cheese-PvP-chess/internal/session"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

// Deps wires a Service. Archive, Renderer and Metrics are optional.
type Deps struct {
	Store       pvpchess.GameStore
	Auth        auth.Resolver
	Registry    *session.Registry
	Broadcaster *session.Broadcaster
	Catalog     *msgcat.Catalog
	Archive     pvpchess.Archive
	Renderer    render.BoardRenderer
	Metrics     *metrics.Metrics
	Logger      *zap.Logger

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

type Service struct {
	store    pvpchess.GameStore
	auth     auth.Resolver
	registry *session.Registry
	bcast    *session.Broadcaster
	msgs     *msgcat.Catalog
	archive  pvpchess.Archive
	renderer render.BoardRenderer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	locks    *keyedMutex
	now      func() time.Time
	newID    func() string
}

func New(d Deps) (*Service, error) {
	if d.Store == nil {
		return nil, fmt.Errorf("game store is required")
	}
	if d.Auth == nil {
		return nil, fmt.Errorf("auth resolver is required")
	}
	if d.Registry == nil {
		return nil, fmt.Errorf("session registry is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Broadcaster == nil {
		d.Broadcaster = session.NewBroadcaster(d.Registry, d.Logger, d.Metrics)
	}
	if d.Catalog == nil {
		d.Catalog = msgcat.MustDefault()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return &Service{
		store:    d.Store,
		auth:     d.Auth,
		registry: d.Registry,
		bcast:    d.Broadcaster,
		msgs:     d.Catalog,
		archive:  d.Archive,
		renderer: d.Renderer,
		metrics:  d.Metrics,
		logger:   d.Logger,
		locks:    newKeyedMutex(),
		now:      d.Now,
		newID:    d.NewID,
	}, nil
}

// Handle is the transport entry point. Any failure is reported to conn only
// and returned for logging.
func (s *Service) Handle(ctx context.Context, conn session.Connection, cmd *chessdto.Command) error {
	start := time.Now()
	kind := "UNKNOWN"
	if cmd != nil {
		kind = string(cmd.Type)
	}
	err := s.handle(ctx, conn, cmd)
	s.metrics.ObserveCommand(kind, codeOf(err), time.Since(start))
	if err == nil {
		return nil
	}
	if sendErr := conn.Send(ctx, chessdto.ErrorFrom(err)); sendErr != nil {
		s.logger.Warn("command_error_undelivered",
			zap.String("conn", conn.ID()),
			zap.String("type", kind),
			zap.Error(sendErr),
		)
	}
	return err
}

func (s *Service) handle(ctx context.Context, conn session.Connection, cmd *chessdto.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	participant, err := s.auth.Resolve(ctx, strings.TrimSpace(cmd.AuthToken))
	if err != nil || participant == "" {
		if err != nil && !errors.Is(err, auth.ErrUnknownToken) {
			s.logger.Warn("auth_resolve_failed", zap.String("conn", conn.ID()), zap.Error(err))
		}
		if err == nil {
			err = auth.ErrUnknownToken
		}
		return authError(err)
	}
	gameID := strings.TrimSpace(cmd.GameID)
	switch cmd.Type {
	case chessdto.CommandConnect:
		return s.Connect(ctx, gameID, participant, conn)
	case chessdto.CommandMakeMove:
		return s.MakeMove(ctx, gameID, participant, *cmd.Move)
	case chessdto.CommandLeave:
		return s.Leave(ctx, gameID, participant)
	case chessdto.CommandResign:
		return s.Resign(ctx, gameID, participant)
	}
	return ErrValidation.WithMessage("unknown command type " + string(cmd.Type))
}

// Disconnect drops every registration held by conn.
func (s *Service) Disconnect(conn session.Connection) {
	games := s.registry.UnregisterConnection(conn)
	if len(games) > 0 {
		s.logger.Debug("session_disconnected",
			zap.String("conn", conn.ID()),
			zap.Strings("games", games),
		)
	}
}

// CreateGame stores a fresh game between two participants.
func (s *Service) CreateGame(ctx context.Context, whiteID, blackID string) (*pvpchess.Record, error) {
	whiteID, blackID = strings.TrimSpace(whiteID), strings.TrimSpace(blackID)
	if whiteID == "" || blackID == "" {
		return nil, ErrValidation.WithMessage("both players are required")
	}
	if whiteID == blackID {
		return nil, ErrValidation.WithMessage("players must differ")
	}
	rec := pvpchess.NewRecord(s.newID(), whiteID, blackID, s.now())
	if err := s.store.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error("game_create_failed", zap.String("game", rec.ID), zap.Error(err))
		return nil, ErrInternal
	}
	s.logger.Info("game_created",
		zap.String("game", rec.ID),
		zap.String("white", whiteID),
		zap.String("black", blackID),
	)
	return rec, nil
}

// Connect registers conn for participant, sends it the current state and
// announces the join to everyone else.
func (s *Service) Connect(ctx context.Context, gameID, participant string, conn session.Connection) error {
	ctx = context.WithoutCancel(ctx)
	rec, err := s.store.Get(ctx, gameID)
	if err != nil {
		return s.loadFailed(gameID, err)
	}
	g, err := rec.Game()
	if err != nil {
		s.logger.Error("game_reconstruct_failed", zap.String("game", gameID), zap.Error(err))
		return ErrInternal
	}

	s.registry.Register(gameID, participant, conn)
	s.bcast.NotifyOne(ctx, gameID, participant, chessdto.LoadGame(s.state(ctx, rec, g, nil)))

	key := "game.joined_observer"
	if c, ok := rec.ColorOf(participant); ok {
		key = "game.joined_" + string(c)
	}
	text := s.msgs.Text(key, map[string]any{"Player": participant}, participant+" joined")
	s.bcast.Broadcast(ctx, gameID, participant, chessdto.Notification(text))
	s.logger.Info("game_joined", zap.String("game", gameID), zap.String("participant", participant))
	return nil
}

type committedMove struct {
	rec   *pvpchess.Record
	game  *chess.Game
	move  chess.Move
	color pvpchess.Color
	san   string
}

// MakeMove applies a move for participant. Rejections change nothing and
// broadcast nothing.
func (s *Service) MakeMove(ctx context.Context, gameID, participant string, dto chessdto.MoveDTO) error {
	ctx = context.WithoutCancel(ctx)
	mv, err := moveFromDTO(dto)
	if err != nil {
		return err
	}
	// The turn as seen when the command arrived tells a lost race apart
	// from a move sent out of turn.
	seen, err := s.store.Get(ctx, gameID)
	if err != nil {
		return s.loadFailed(gameID, err)
	}
	res, err := s.commitMove(ctx, gameID, participant, mv, seen.Turn)
	if err != nil {
		return err
	}
	s.metrics.MoveCommitted()
	s.logger.Info("game_move",
		zap.String("game", gameID),
		zap.String("participant", participant),
		zap.String("uci", mv.UCI()),
		zap.String("san", res.san),
		zap.String("status", string(res.rec.Status)),
	)

	s.bcast.Broadcast(ctx, gameID, "", chessdto.LoadGame(s.state(ctx, res.rec, res.game, &res.move)))
	moved := s.msgs.Text("game.moved", map[string]any{
		"Player": participant,
		"Color":  string(res.color),
		"SAN":    res.san,
		"UCI":    mv.UCI(),
	}, participant+" played "+mv.UCI())
	s.bcast.Broadcast(ctx, gameID, participant, chessdto.Notification(moved))
	if text := s.derivedNotice(res.rec, res.game); text != "" {
		s.bcast.Broadcast(ctx, gameID, "", chessdto.Notification(text))
	}
	if res.rec.Status.Terminal() {
		s.finish(ctx, res.rec)
	}
	return nil
}

// commitMove validates and persists under the game lock. seenTurn is the
// mover observed before the lock was taken.
func (s *Service) commitMove(ctx context.Context, gameID, participant string, mv chess.Move, seenTurn pvpchess.Color) (*committedMove, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	rec, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, s.loadFailed(gameID, err)
	}
	color, seated := rec.ColorOf(participant)
	if !seated {
		return nil, ErrUnauthorized.WithMessage("observers cannot move")
	}
	if rec.Status.Terminal() {
		return nil, ErrIllegalMove.WithMessage("game is over")
	}
	if color != rec.Turn {
		if color == seenTurn {
			return nil, ErrIllegalMove.WithMessage("another move was committed first")
		}
		return nil, ErrUnauthorized.WithMessage("not your turn")
	}
	g, err := rec.Game()
	if err != nil {
		s.logger.Error("game_reconstruct_failed", zap.String("game", gameID), zap.Error(err))
		return nil, ErrInternal
	}
	if err := g.MakeMove(mv); err != nil {
		if errors.Is(err, chess.ErrIllegalMove) || errors.Is(err, chess.ErrGameOver) {
			return nil, ErrIllegalMove.WithMessage("illegal move " + mv.UCI())
		}
		return nil, ErrInternal
	}

	next := rec.Clone()
	uci := mv.UCI()
	san := notation.SANOrUCI(rec.FEN, uci)
	next.MovesUCI = append(next.MovesUCI, uci)
	next.MovesSAN = append(next.MovesSAN, san)
	next.Sync(g, s.now())
	if err := s.store.Update(ctx, next); err != nil {
		if errors.Is(err, pvpchess.ErrStaleRecord) {
			s.logger.Info("game_move_superseded", zap.String("game", gameID), zap.String("uci", uci))
			return nil, ErrIllegalMove.WithMessage("another move was committed first")
		}
		s.logger.Error("game_persist_failed", zap.String("game", gameID), zap.Error(err))
		return nil, ErrInternal
	}
	return &committedMove{rec: next, game: g, move: mv, color: color, san: san}, nil
}

// Resign ends the game in favour of participant's opponent.
func (s *Service) Resign(ctx context.Context, gameID, participant string) error {
	ctx = context.WithoutCancel(ctx)
	rec, g, err := s.commitResign(ctx, gameID, participant)
	if err != nil {
		return err
	}
	s.logger.Info("game_resigned",
		zap.String("game", gameID),
		zap.String("participant", participant),
		zap.String("winner", rec.Winner),
	)
	s.bcast.Broadcast(ctx, gameID, "", chessdto.Notification(s.derivedNotice(rec, g)))
	s.bcast.Broadcast(ctx, gameID, "", chessdto.LoadGame(s.state(ctx, rec, g, nil)))
	s.finish(ctx, rec)
	return nil
}

func (s *Service) commitResign(ctx context.Context, gameID, participant string) (*pvpchess.Record, *chess.Game, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	rec, err := s.store.Get(ctx, gameID)
	if err != nil {
		return nil, nil, s.loadFailed(gameID, err)
	}
	color, seated := rec.ColorOf(participant)
	if !seated {
		return nil, nil, ErrUnauthorized.WithMessage("only players can resign")
	}
	if rec.Status.Terminal() {
		return nil, nil, ErrUnauthorized.WithMessage("game is over")
	}
	g, err := rec.Game()
	if err != nil {
		s.logger.Error("game_reconstruct_failed", zap.String("game", gameID), zap.Error(err))
		return nil, nil, ErrInternal
	}
	if err := g.Resign(color.Side()); err != nil {
		return nil, nil, ErrUnauthorized.WithMessage("game is over")
	}
	next := rec.Clone()
	next.Sync(g, s.now())
	if err := s.store.Update(ctx, next); err != nil {
		return nil, nil, s.persistFailed(gameID, err)
	}
	return next, g, nil
}

// Leave frees participant's seat, if any, and detaches them from the game.
func (s *Service) Leave(ctx context.Context, gameID, participant string) error {
	ctx = context.WithoutCancel(ctx)
	seated, err := s.vacate(ctx, gameID, participant)
	if err != nil {
		return err
	}
	if !s.registry.Unregister(gameID, participant) && !seated {
		return nil
	}
	text := s.msgs.Text("game.left", map[string]any{"Player": participant}, participant+" left the game")
	s.bcast.Broadcast(ctx, gameID, "", chessdto.Notification(text))
	s.logger.Info("game_left", zap.String("game", gameID), zap.String("participant", participant))
	return nil
}

// vacate clears participant's seat and reports whether one was held.
func (s *Service) vacate(ctx context.Context, gameID, participant string) (bool, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	rec, err := s.store.Get(ctx, gameID)
	if err != nil {
		return false, s.loadFailed(gameID, err)
	}
	color, seated := rec.ColorOf(participant)
	if !seated {
		return false, nil
	}
	next := rec.Clone()
	if color == pvpchess.White {
		next.WhiteID = ""
	} else {
		next.BlackID = ""
	}
	next.UpdatedAt = s.now()
	if err := s.store.Update(ctx, next); err != nil {
		return false, s.persistFailed(gameID, err)
	}
	return true, nil
}

// derivedNotice describes the position after a commit: the end of the game
// or a check on the side to move. It is empty otherwise.
func (s *Service) derivedNotice(rec *pvpchess.Record, g *chess.Game) string {
	st := g.Status()
	switch st.Kind {
	case chess.Checkmate:
		return s.msgs.Text("game.checkmate", map[string]any{
			"Color":  st.Color.String(),
			"Winner": st.Winner().String(),
		}, "checkmate")
	case chess.Stalemate:
		return s.msgs.Text("game.stalemate", nil, "stalemate")
	case chess.Resigned:
		return s.msgs.Text("game.resigned", map[string]any{
			"Player": rec.PlayerID(pvpchess.Color(st.Color.String())),
			"Color":  st.Color.String(),
			"Winner": st.Winner().String(),
		}, st.Color.String()+" resigned")
	}
	if turn := g.Turn(); g.IsInCheck(turn) {
		return s.msgs.Text("game.check", map[string]any{"Color": turn.String()}, turn.String()+" is in check")
	}
	return ""
}

// finish records a terminal game. Archive failures are logged only.
func (s *Service) finish(ctx context.Context, rec *pvpchess.Record) {
	s.metrics.GameFinished(rec.Method())
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveResult(ctx, rec); err != nil {
		s.logger.Warn("game_archive_failed", zap.String("game", rec.ID), zap.Error(err))
	}
}

// state builds the wire snapshot, attaching a board image when a renderer
// is configured.
func (s *Service) state(ctx context.Context, rec *pvpchess.Record, g *chess.Game, last *chess.Move) *chessdto.GameState {
	st := pvpchess.ToState(rec, g)
	if s.renderer == nil {
		return st
	}
	img, err := s.renderer.RenderPNG(ctx, g.Board(), render.Options{Highlight: last})
	if err != nil {
		s.logger.Warn("board_render_failed", zap.String("game", rec.ID), zap.Error(err))
		return st
	}
	st.BoardImage = img
	return st
}

// persistFailed maps a failed write. A stale record means another process
// changed the game first; the command is safe to resend.
func (s *Service) persistFailed(gameID string, err error) error {
	if errors.Is(err, pvpchess.ErrStaleRecord) {
		s.logger.Info("game_write_conflict", zap.String("game", gameID))
		return ErrInternal.WithMessage("game changed concurrently, retry")
	}
	s.logger.Error("game_persist_failed", zap.String("game", gameID), zap.Error(err))
	return ErrInternal
}

func (s *Service) loadFailed(gameID string, err error) error {
	if !errors.Is(err, pvpchess.ErrGameNotFound) {
		s.logger.Error("game_load_failed", zap.String("game", gameID), zap.Error(err))
	}
	return storeError(err)
}

func moveFromDTO(dto chessdto.MoveDTO) (chess.Move, error) {
	mv := chess.Move{
		Start: chess.Pos(dto.Start.Row, dto.Start.Col),
		End:   chess.Pos(dto.End.Row, dto.End.Col),
	}
	if p := strings.ToLower(strings.TrimSpace(dto.Promotion)); p != "" {
		k, err := chess.ParseKind(p)
		if err != nil {
			return chess.Move{}, ErrValidation.WithMessage("unknown promotion " + dto.Promotion)
		}
		mv.Promotion = k
	}
	return mv, nil
}
