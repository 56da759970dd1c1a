package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID generates an opaque record id with a collection prefix,
// e.g. "user_7f9c2ba4e88f827d". Prefixed ids keep exported snapshots
// and logs readable.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s_%s", prefix, raw[:16])
}
