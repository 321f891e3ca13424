package l2fwd

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Shutdown is a one-way stop request flag.
// The zero value is running.
type Shutdown struct {
	flag atomic.Bool
}

// Request requests the application to stop.
// It returns true only on the first call.
func (sd *Shutdown) Request() bool {
	return sd.flag.CompareAndSwap(false, true)
}

// Requested determines whether stop has been requested.
func (sd *Shutdown) Requested() bool {
	return sd.flag.Load()
}

// Notify requests stop when any of the signals arrives.
// The returned function unregisters the signals and waits for the notification goroutine to exit.
// It may be called more than once.
func (sd *Shutdown) Notify(sigs ...os.Signal) (stop func()) {
	c := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	signal.Notify(c, sigs...)

	go func() {
		defer close(exited)
		for {
			select {
			case sig := <-c:
				if sd.Request() {
					logger.Info("signal received, stopping", zap.Stringer("signal", sig))
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(c)
			close(done)
			<-exited
		})
	}
}
