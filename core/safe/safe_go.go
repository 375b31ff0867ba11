// Package safe runs functions on their own goroutines with panic recovery,
// so fire-and-forget work cannot take the caller down.
package safe

import (
	"fmt"

	"github.com/rambollwong/rainbowlog"
)

// Go executes f concurrently in a goroutine. A panic inside f is recovered
// and printed.
func Go(f func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				fmt.Printf("panic: %+v", err)
			}
		}()
		f()
	}()
}

// LoggerGo executes f concurrently in a goroutine. A panic inside f is
// recovered and logged through the given logger.
func LoggerGo(logger *rainbowlog.Logger, f func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().Msgf("panic: %+v", err).Done()
			}
		}()
		f()
	}()
}
