package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCouponCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-Z]{8}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := GenerateCouponCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}

	assert.Greater(t, len(seen), 1)
}
