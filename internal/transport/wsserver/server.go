// Package wsserver exposes the game service over websockets, plus health,
// metrics and game history endpoints.
package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/park285/Cheese-PvP-chess/internal/domain"
	"github.com/park285/Cheese-PvP-chess/internal/metrics"
	"github.com/park285/Cheese-PvP-chess/internal/pvpchess"
	"github.com/park285/Cheese-PvP-chess/internal/session"
	"github.com/park285/Cheese-PvP-chess/pkg/chessdto"
)

const (
	readLimit           = 64 << 10
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Handler is the command sink, implemented by service.Service.
type Handler interface {
	Handle(ctx context.Context, conn session.Connection, cmd *chessdto.Command) error
	Disconnect(conn session.Connection)
}

type Config struct {
	Addr string
	// PingInterval <= 0 disables keepalive pings.
	PingInterval   time.Duration
	OriginPatterns []string
}

type Server struct {
	cfg     Config
	handler Handler
	archive pvpchess.Archive
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New builds a server. archive and m may be nil; the matching endpoints
// then answer 404.
func New(cfg Config, h Handler, archive pvpchess.Archive, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, handler: h, archive: archive, metrics: m, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	if s.archive != nil {
		mux.HandleFunc("/api/history", s.serveHistory)
	}
	return mux
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ws_server_listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("ws_server_shutdown")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.cfg.OriginPatterns,
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		s.logger.Warn("ws_accept_failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	ws.SetReadLimit(readLimit)
	c := newConn(uuid.NewString(), ws)
	s.metrics.ConnectionOpened()
	s.logger.Info("ws_connected", zap.String("conn", c.id), zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.handler.Disconnect(c)
		c.close(websocket.StatusNormalClosure, "bye")
		s.metrics.ConnectionClosed()
		s.logger.Info("ws_disconnected", zap.String("conn", c.id))
	}()

	if s.cfg.PingInterval > 0 {
		go s.pingLoop(ctx, c)
	}
	s.readLoop(ctx, c)
}

func (s *Server) readLoop(ctx context.Context, c *conn) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if ctx.Err() == nil {
					s.logger.Debug("ws_read_failed", zap.String("conn", c.id), zap.Error(err))
				}
			}
			return
		}
		if typ != websocket.MessageText {
			s.reject(ctx, c, "text frames only")
			continue
		}
		var cmd chessdto.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.reject(ctx, c, "malformed command")
			continue
		}
		if err := s.handler.Handle(ctx, c, &cmd); err != nil {
			s.logger.Debug("command_rejected",
				zap.String("conn", c.id),
				zap.String("type", string(cmd.Type)),
				zap.String("game", cmd.GameID),
				zap.Error(err),
			)
		}
	}
}

func (s *Server) reject(ctx context.Context, c *conn, reason string) {
	msg := chessdto.ErrorFrom(chessdto.DomainError{Code: chessdto.CodeValidation, Message: reason})
	if err := c.Send(ctx, msg); err != nil {
		s.logger.Debug("ws_reject_failed", zap.String("conn", c.id), zap.Error(err))
	}
}

// pingLoop closes the connection after two consecutive failed pings.
func (s *Server) pingLoop(ctx context.Context, c *conn) {
	t := time.NewTicker(s.cfg.PingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := c.ws.Ping(pctx)
		cancel()
		if err == nil {
			failures = 0
			continue
		}
		failures++
		if failures >= 2 {
			s.logger.Info("ws_ping_timeout", zap.String("conn", c.id))
			c.close(websocket.StatusGoingAway, "ping failure")
			return
		}
	}
}

func (s *Server) serveHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	participant := strings.TrimSpace(r.URL.Query().Get("participant"))
	if participant == "" {
		http.Error(w, "participant is required", http.StatusBadRequest)
		return
	}
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	games, err := s.archive.Recent(r.Context(), participant, limit)
	if err != nil {
		s.logger.Error("history_query_failed", zap.String("participant", participant), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]chessdto.GameSummary, 0, len(games))
	for _, g := range games {
		out = append(out, summary(g))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func summary(g *domain.ArchivedGame) chessdto.GameSummary {
	return chessdto.GameSummary{
		GameID:     g.GameID,
		WhiteID:    g.WhiteID,
		BlackID:    g.BlackID,
		Result:     g.Result,
		Method:     g.Method,
		MovesSAN:   append([]string{}, g.MovesSAN...),
		PGN:        g.PGN,
		StartedAt:  g.StartedAt,
		EndedAt:    g.EndedAt,
		DurationMs: g.Duration.Milliseconds(),
	}
}
