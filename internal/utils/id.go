package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateID produces a unique string identifier: a base-36 millisecond
// timestamp prefix followed by a random suffix. The prefix keeps ids
// roughly sortable by creation time, but uniqueness is the contract -
// same-millisecond ties are broken by the suffix.
func GenerateID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return prefix + "-" + suffix
}
