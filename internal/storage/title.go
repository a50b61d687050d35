package storage

import (
	"fmt"
	"time"

	"github.com/mmynk/splitvision/internal/models"
)

// GenerateTitle creates a display title for a session that has none,
// based on its creation date and item count.
func GenerateTitle(session *models.Session) string {
	created := time.Now()
	if session.CreatedAt != 0 {
		created = time.Unix(session.CreatedAt, 0)
	}
	date := created.Format("Jan 2, 2006")

	switch n := len(session.Items); n {
	case 0:
		return fmt.Sprintf("Receipt - %s", date)
	case 1:
		return fmt.Sprintf("Receipt - %s (1 item)", date)
	default:
		return fmt.Sprintf("Receipt - %s (%d items)", date, n)
	}
}
