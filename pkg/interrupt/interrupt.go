// Package interrupt converts process signals into a cooperative stop
// flag. The first SIGINT/SIGTERM requests a graceful stop: run loops
// observe the flag between iterations and wind down with state saved
// and the browser released. A second signal cancels the derived
// context and abandons whatever is in flight.
package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"tokclean/pkg/logger"
)

// Watcher listens for stop signals during a run
type Watcher struct {
	flag   atomic.Bool
	cancel context.CancelFunc
	sigCh  chan os.Signal
	stop   chan struct{}
	logger logger.Logger
}

// Watch starts signal handling and returns a context derived from
// parent that is cancelled on the second signal. Call Stop when the
// run ends to restore default signal behavior.
func Watch(parent context.Context) (*Watcher, context.Context) {
	ctx, cancel := context.WithCancel(parent)
	w := &Watcher{
		cancel: cancel,
		sigCh:  make(chan os.Signal, 2),
		stop:   make(chan struct{}),
		logger: logger.GetLogger(),
	}

	signal.Notify(w.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go w.listen()

	return w, ctx
}

func (w *Watcher) listen() {
	select {
	case <-w.stop:
		return
	case sig := <-w.sigCh:
		w.flag.Store(true)
		w.logger.WithField("signal", sig.String()).
			Warn("Stop requested, finishing current step (signal again to force quit)")
	}

	select {
	case <-w.stop:
		return
	case <-w.sigCh:
		w.logger.Error("Force quit, abandoning current step")
		w.cancel()
	}
}

// Interrupted reports whether a stop was requested. Safe to call from
// any goroutine.
func (w *Watcher) Interrupted() bool {
	return w.flag.Load()
}

// RequestStop sets the stop flag without a signal, for callers that
// translate their own input (such as a TUI quit key) into a stop.
func (w *Watcher) RequestStop() {
	w.flag.Store(true)
}

// Stop ends signal handling and releases the derived context
func (w *Watcher) Stop() {
	signal.Stop(w.sigCh)
	close(w.stop)
	w.cancel()
}
