package app

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Serve runs fiberApp on ln until a signal arrives on stop, then shuts it down
// within timeout. A serve failure is returned to the caller instead of exiting,
// so deferred cleanup in the caller still runs.
func Serve(fiberApp *fiber.App, ln net.Listener, stop <-chan os.Signal, timeout time.Duration) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := fiberApp.Listener(ln); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("serve on %s: %w", ln.Addr(), err)
	case <-stop:
	}

	if err := fiberApp.ShutdownWithTimeout(timeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
