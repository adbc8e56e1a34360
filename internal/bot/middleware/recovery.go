package middleware

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Recover stops a panicking update handler from killing the dispatch
// loop. The panic is logged with its stack; when notify is non-nil it
// receives a one-line description plus the stack, which the bot forwards
// to the configured admins.
func Recover(notify func(description string)) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		log.WithFields(log.Fields{
			"component": "panic_recovery",
			"panic":     fmt.Sprintf("%v", r),
			"stack":     stack,
		}).Error("PANIC in update handler — recovered")

		if notify != nil {
			notify(fmt.Sprintf("panic: %v\n\n%s", r, stack))
		}
	}
}
