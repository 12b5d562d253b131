package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func TestRedisTokenStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisTokenStore(rdb, time.Minute)
	ctx := context.Background()

	tok, err := s.Issue(ctx, "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if id, err := s.Resolve(ctx, tok); err != nil || id != "alice" {
		t.Fatalf("Resolve = %q %v", id, err)
	}
	if _, err := s.Resolve(ctx, "nope"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("unknown token err = %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.Resolve(ctx, tok); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expired token err = %v", err)
	}
	if _, err := s.Issue(ctx, " "); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("blank identity err = %v", err)
	}
}

func TestJWTResolver(t *testing.T) {
	j, err := NewJWTResolver("s3cret", "chess")
	if err != nil {
		t.Fatalf("NewJWTResolver: %v", err)
	}
	tok, err := j.Issue("bob", time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if id, err := j.Resolve(context.Background(), tok); err != nil || id != "bob" {
		t.Fatalf("Resolve = %q %v", id, err)
	}

	other, _ := NewJWTResolver("different", "chess")
	if _, err := other.Resolve(context.Background(), tok); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("wrong secret err = %v", err)
	}
	expired, _ := j.Issue("bob", -time.Minute)
	if _, err := j.Resolve(context.Background(), expired); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expired err = %v", err)
	}
	if _, err := j.Resolve(context.Background(), "garbage"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("garbage err = %v", err)
	}
}

func startResolverServer(t *testing.T, handler fasthttp.RequestHandler) func(string) (net.Conn, error) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return func(string) (net.Conn, error) { return ln.Dial() }
}

func TestHTTPResolver(t *testing.T) {
	var calls atomic.Int32
	dial := startResolverServer(t, func(ctx *fasthttp.RequestCtx) {
		n := calls.Add(1)
		var req resolveRequest
		_ = json.Unmarshal(ctx.PostBody(), &req)
		switch req.Token {
		case "good":
			ctx.SetContentType("application/json")
			_, _ = ctx.WriteString(`{"identity":"carol"}`)
		case "flaky":
			if n%2 == 1 {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				return
			}
			_, _ = ctx.WriteString(`{"identity":"dave"}`)
		case "down":
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		default:
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		}
	})
	r := NewHTTPResolver("http://auth.local", WithDial(dial), WithRetry(2), WithTimeout(time.Second))
	ctx := context.Background()

	if id, err := r.Resolve(ctx, "good"); err != nil || id != "carol" {
		t.Fatalf("good = %q %v", id, err)
	}
	if _, err := r.Resolve(ctx, "bad"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("bad err = %v", err)
	}
	calls.Store(0)
	if id, err := r.Resolve(ctx, "flaky"); err != nil || id != "dave" {
		t.Fatalf("flaky = %q %v", id, err)
	}
	_, err := r.Resolve(ctx, "down")
	if err == nil || errors.Is(err, ErrUnknownToken) {
		t.Fatalf("down err = %v", err)
	}
}

func TestChain(t *testing.T) {
	failing := ResolverFunc(func(context.Context, string) (string, error) {
		return "", errors.New("redis down")
	})
	c := Chain{Static{"a": "alice"}, failing, Static{"b": "bob"}}
	ctx := context.Background()
	if id, err := c.Resolve(ctx, "b"); err != nil || id != "bob" {
		t.Fatalf("b = %q %v", id, err)
	}
	if _, err := c.Resolve(ctx, "zzz"); err == nil || errors.Is(err, ErrUnknownToken) {
		t.Fatalf("backend failure should surface, got %v", err)
	}
	if _, err := (Chain{Static{}}).Resolve(ctx, "zzz"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("unknown err = %v", err)
	}
	if _, err := c.Resolve(ctx, ""); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("empty token err = %v", err)
	}
}
