package tool

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKey_Format(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-F]{8}(-[0-9A-F]{8}){3}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		k := GenerateLicenseKey()
		require.Regexp(t, re, k)
		require.False(t, seen[k])
		seen[k] = true
	}
}
