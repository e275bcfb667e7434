package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/plantops/plantops-backend/pkg/enums"
)

// NewCode builds a human-diagnosable notification code:
// <TYPE>_<YYYYMMDDHHMMSS>_<8 hex>.
func NewCode(notificationType enums.NotificationType, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s",
		strings.ToUpper(string(notificationType)),
		now.UTC().Format("20060102150405"),
		strings.ToUpper(suffix),
	)
}
