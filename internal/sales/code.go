package sales

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSaleCode returns a sale code like V-20250114153042-9F3A21BC: a sortable
// timestamp plus a short random suffix. Collisions are astronomically
// unlikely but not impossible; the unique constraint on sales.code is the
// backstop, and the service retries once on a collision.
func NewSaleCode() string {
	ts := time.Now().Format("20060102150405")
	random := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("V-%s-%s", ts, random)
}
