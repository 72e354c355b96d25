package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDurationMillis(t *testing.T) {
	assert.InDelta(t, 0.25, durationMillis(250*time.Microsecond), 1e-9)
	assert.InDelta(t, 1.5, durationMillis(1500*time.Microsecond), 1e-9)
	assert.InDelta(t, 120.0, durationMillis(120*time.Millisecond), 1e-9)
}
