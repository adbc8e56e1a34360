// Package common contains small utilities shared across the project.
package common

import (
	"fmt"
	"strings"
	"time"
)

// Truncate cuts s to at most max bytes, appending an ellipsis marker when
// something was cut. Used for stack traces forwarded to admins and for
// message previews in logs.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// PluralizeSeconds returns "second" or "seconds" for n.
func PluralizeSeconds(n int) string {
	if n == 1 {
		return "second"
	}
	return "seconds"
}

// FormatWait renders a wait duration as whole seconds, rounded up.
// FormatWait(1500ms) → "2 seconds", FormatWait(1s) → "1 second".
func FormatWait(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("%d %s", secs, PluralizeSeconds(secs))
}

// NormalizeVehicle prepares a user-supplied vehicle number for the remote
// API: strips all whitespace and uppercases. "kl 70 c 1679" → "KL70C1679".
func NormalizeVehicle(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// FormatDateTime renders a timestamp for admin-facing messages.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02.01.2006 15:04")
}
