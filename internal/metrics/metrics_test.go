package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveCommand("MAKE_MOVE", "", 5*time.Millisecond)
	m.ObserveCommand("MAKE_MOVE", "ILLEGAL_MOVE", time.Millisecond)
	m.MoveCommitted()
	m.GameFinished("checkmate")
	m.SendFailed()
	m.ConnectionOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Result().Body)
	for _, want := range []string{
		`chess_commands_total{code="OK",type="MAKE_MOVE"} 1`,
		`chess_commands_total{code="ILLEGAL_MOVE",type="MAKE_MOVE"} 1`,
		`chess_moves_total 1`,
		`chess_games_finished_total{method="checkmate"} 1`,
		`chess_broadcast_send_failures_total 1`,
		`chess_ws_connections 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("missing %q in metrics output", want)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCommand("CONNECT", "", time.Second)
	m.MoveCommitted()
	m.SendFailed()
	m.ConnectionClosed()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("nil handler status = %d", rec.Code)
	}
}
