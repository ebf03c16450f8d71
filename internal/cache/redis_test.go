package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNeedsExpiry(t *testing.T) {
	assert.True(t, needsExpiry(-1), "fresh counter or a lost EXPIRE")
	assert.False(t, needsExpiry(-2), "missing key")
	assert.False(t, needsExpiry(30*time.Second))
	assert.False(t, needsExpiry(0))
}
