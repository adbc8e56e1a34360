package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hello", Truncate("hello", 5))
	assert.Equal(t, "hel...", Truncate("hello", 3))
	assert.Equal(t, "hello", Truncate("hello", 0))
}

func TestFormatWait(t *testing.T) {
	assert.Equal(t, "1 second", FormatWait(1*time.Second))
	assert.Equal(t, "2 seconds", FormatWait(1500*time.Millisecond))
	assert.Equal(t, "2 seconds", FormatWait(2*time.Second))
	assert.Equal(t, "1 second", FormatWait(10*time.Millisecond))
	assert.Equal(t, "1 second", FormatWait(0))
}

func TestNormalizeVehicle(t *testing.T) {
	assert.Equal(t, "KL70C1679", NormalizeVehicle("kl 70 c 1679"))
	assert.Equal(t, "KL70C1679", NormalizeVehicle("KL70C1679"))
	assert.Equal(t, "KL70C1679", NormalizeVehicle("  kl70c1679\t"))
	assert.Equal(t, "", NormalizeVehicle("   "))
}

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "01.06.2025 09:30", FormatDateTime(ts, nil))

	loc := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "01.06.2025 15:00", FormatDateTime(ts, loc))
}
