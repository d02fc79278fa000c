package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a new globally unique identifier as string. It is implemented
// as a thin wrapper so tests can stub it.

var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Artifact returns a unique file name for a temporary download artifact,
// e.g. Artifact("bundle", ".zip") -> "bundle-<uuid>.zip".
func Artifact(prefix, ext string) string {
	return fmt.Sprintf("%s-%s%s", prefix, New(), ext)
}
