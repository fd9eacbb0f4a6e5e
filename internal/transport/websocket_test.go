package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// echoServer upgrades, sends greeting, then echoes every message back.
func echoServer(t *testing.T, greeting string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(greeting)); err != nil {
			return
		}
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_ReceivesAndSends(t *testing.T) {
	srv := echoServer(t, `{"channel":"hardware","data":{}}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, Options{URL: wsURL(srv)})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer c.Close()

	received := make(chan string, 4)
	c.SetHandler(func(p []byte) { received <- string(p) })
	c.Start()

	select {
	case got := <-received:
		if got != `{"channel":"hardware","data":{}}` {
			t.Errorf("first message = %s", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for greeting")
	}

	if err := c.Send(ctx, []byte("ping")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	select {
	case got := <-received:
		if got != "ping" {
			t.Errorf("echo = %s, want ping", got)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for echo")
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	srv := echoServer(t, "hello")

	c, err := Dial(context.Background(), Options{URL: wsURL(srv)})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	c.Start()
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done() not closed after Close()")
	}
	if err := c.Send(context.Background(), []byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() after close error = %v, want ErrNotConnected", err)
	}
}

func TestDial_Failure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), Options{URL: wsURL(srv), HandshakeTimeout: time.Second})
	if !errors.Is(err, ErrDialFailed) {
		t.Errorf("Dial() error = %v, want ErrDialFailed", err)
	}
}
