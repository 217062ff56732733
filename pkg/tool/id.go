package tool

import (
	"strings"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateLicenseKey returns a random key in four dash separated groups of
// eight uppercase hex characters, e.g. 1F0A9C2B-7D3E-....
func GenerateLicenseKey() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", ""))
	groups := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		groups = append(groups, raw[i*8:(i+1)*8])
	}
	return strings.Join(groups, "-")
}
