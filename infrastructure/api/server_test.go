package api_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localytics/localytics/infrastructure/api"
)

// freeAddr reserves an ephemeral port and releases it for the server to
// bind.
func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_GracefulShutdownDrainsInflight(t *testing.T) {
	addr := freeAddr(t)
	server := api.NewServer(addr, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	server.Router().Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		_, _ = w.Write([]byte("ok"))
	})

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	body := make(chan string, 1)
	go func() {
		var resp *http.Response
		var err error
		for i := 0; i < 100; i++ {
			resp, err = http.Get("http://" + addr + "/slow")
			if err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		if err != nil {
			body <- err.Error()
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body <- string(b)
	}()

	<-started

	shutdownErr := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	// Shutdown must hold the connection open until the handler finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)

	require.Equal(t, "ok", <-body)
	require.NoError(t, <-shutdownErr)
	require.NoError(t, <-serveErr)
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	server := api.NewServer("127.0.0.1:0", nil)
	require.NoError(t, server.Shutdown(context.Background()))
}
