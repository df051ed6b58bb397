package application

import (
	"strconv"
	"strings"
)

// ParseQuantity turns user input into a quantity. ok is false for anything
// that isn't a plain base-10 integer; callers treat that as a no-op.
func ParseQuantity(raw string) (qty int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return n, true
}
