package mdb

import (
	"strings"

	"github.com/google/uuid"
)

// newBoundary returns a delimiter token that is unique per call, so a
// table name or field value that happens to look like a fixed delimiter
// cannot split output in the wrong place.
//
// The token never starts with a dash, so it cannot be mistaken for a flag.
// Collision avoidance is probabilistic: data that contains this exact
// token would still be split.
func newBoundary() string {
	return "~~boundary" + strings.ReplaceAll(uuid.NewString(), "-", "") + "~~"
}
