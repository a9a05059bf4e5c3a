// Package chatid builds chat identifiers. Individual chats get a
// deterministic id derived from the two participant ids so both sides of a
// first contact converge on the same record; groups get a generated id.
package chatid

import (
	"fmt"

	"github.com/google/uuid"
)

// Individual returns the canonical id for a two-person chat. The result is
// independent of argument order, which makes chat creation idempotent.
func Individual(a, b int) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// NewGroup returns a fresh id for a group chat.
func NewGroup() string {
	return "g-" + uuid.NewString()
}
