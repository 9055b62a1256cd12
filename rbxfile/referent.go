package rbxfile

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ReferentPrefix starts every generated referent.
const ReferentPrefix = "RBX"

// ReferentFunc returns a new referent each time it is called.
type ReferentFunc func() string

// UUIDReferents returns a generator of random referents: the prefix
// followed by a version 4 UUID as 32 upper-case hex digits.
func UUIDReferents() ReferentFunc {
	return func() string {
		id := uuid.New()
		return ReferentPrefix + strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	}
}

// SequentialReferents returns a generator of counter referents: the prefix
// followed by the count as 32 upper-case hex digits, starting at 1.
func SequentialReferents() ReferentFunc {
	var n uint64
	return func() string {
		n++
		return fmt.Sprintf("%s%032X", ReferentPrefix, n)
	}
}
