package eval

import (
	"os"
	"os/signal"
	"syscall"
)

// ListenInterrupts starts to listen to terminal interrupts. It returns a
// channel that is closed when a SIGINT or SIGQUIT has been received, and a
// cleanup function that should be called to stop listening.
func ListenInterrupts() (<-chan struct{}, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT)
	// Closed after receiving the first signal.
	intCh := make(chan struct{})

	// Closed in the cleanup function to request the relaying goroutine to stop.
	stop := make(chan struct{})
	// Closed in the relaying goroutine to signal that it has stopped.
	stopped := make(chan struct{})

	go func() {
		closed := false
	loop:
		for {
			select {
			case <-sigCh:
				if !closed {
					close(intCh)
					closed = true
				}
			case <-stop:
				break loop
			}
		}
		signal.Stop(sigCh)
		close(stopped)
	}()

	return intCh, func() {
		close(stop)
		<-stopped
	}
}

func noInterrupts() (<-chan struct{}, func()) {
	return nil, func() {}
}
