package normalize

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator produces fallback ids for clashes that carry no name.
type IDGenerator interface {
	NextID(index int) string
}

// RandomIDs generates random uuid-based ids.
type RandomIDs struct{}

// NextID returns a fresh random id.
func (RandomIDs) NextID(int) string {
	return "clash-" + uuid.NewString()
}

// SequenceIDs derives ids from the clash position so repeated ingests of the
// same document yield the same ids.
type SequenceIDs struct {
	Prefix string
}

// NextID returns Prefix followed by the one-based index.
func (s SequenceIDs) NextID(index int) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "clash-"
	}
	return fmt.Sprintf("%s%d", prefix, index+1)
}
