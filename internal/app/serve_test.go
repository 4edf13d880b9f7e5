package app_test

import (
	"errors"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raulashish/FashionStore/internal/app"
)

// brokenListener fails every Accept with a permanent error.
type brokenListener struct {
	net.Listener
}

func (brokenListener) Accept() (net.Conn, error) {
	return nil, errors.New("accept failed")
}

func TestServeReturnsListenerErrors(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	fiberApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	stop := make(chan os.Signal, 1)

	done := make(chan error, 1)
	go func() { done <- app.Serve(fiberApp, brokenListener{ln}, stop, time.Second) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "accept failed")
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the listener failed")
	}
}

func TestServeShutsDownOnSignal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fiberApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	fiberApp.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	stop := make(chan os.Signal, 1)

	done := make(chan error, 1)
	go func() { done <- app.Serve(fiberApp, ln, stop, time.Second) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	url := "http://" + ln.Addr().String() + "/ping"
	require.Eventually(t, func() bool {
		resp, err := client.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	stop <- syscall.SIGTERM

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the stop signal")
	}
}
