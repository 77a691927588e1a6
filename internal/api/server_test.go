package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/quill/internal/store"
	"github.com/dyluth/quill/internal/store/memory"
)

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(memory.New(store.Options{}), ServerOptions{})
	assert.Equal(t, DefaultAddress, s.Addr())
	assert.Equal(t, 10*time.Second, s.http.ReadTimeout)
	assert.Equal(t, 60*time.Second, s.http.IdleTimeout)
	assert.Equal(t, 10*time.Second, s.opts.ShutdownTimeout)
	assert.NotNil(t, s.Handler())
}

func TestServer_ServeAndStop(t *testing.T) {
	s := NewServer(memory.New(store.Options{}), ServerOptions{Addr: "127.0.0.1:0"})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-errCh:
		assert.NoError(t, err, "graceful stop is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}
