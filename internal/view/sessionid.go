package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns "session-<unix ms>-<7 random chars>". The id only
// correlates assistant turns; it carries no other meaning.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("session-%d-%s", now.UnixMilli(), suffix)
}
