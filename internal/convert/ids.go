package convert

import (
	"fmt"

	"github.com/google/uuid"
)

// IDSource supplies identifiers for generated sections and fields. It is
// threaded explicitly through a conversion so id generation is never
// ambient; wall-clock derived ids are not used anywhere.
type IDSource interface {
	SectionID() string
	FieldID() string
}

// CounterIDSource issues sequential ids scoped to one conversion. Not safe
// for concurrent use; each conversion gets its own source.
type CounterIDSource struct {
	sections int
	fields   int
}

// NewCounterIDSource returns a fresh per-conversion counter source
func NewCounterIDSource() *CounterIDSource {
	return &CounterIDSource{}
}

// SectionID returns the next section id
func (s *CounterIDSource) SectionID() string {
	s.sections++
	return fmt.Sprintf("section_%d", s.sections)
}

// FieldID returns the next field id
func (s *CounterIDSource) FieldID() string {
	s.fields++
	return fmt.Sprintf("field_%d", s.fields)
}

// UUIDSource issues random UUIDs, for callers that need ids unique across
// conversions and processes
type UUIDSource struct{}

// NewUUIDSource returns a UUID-backed id source
func NewUUIDSource() *UUIDSource {
	return &UUIDSource{}
}

// SectionID returns a new UUID
func (s *UUIDSource) SectionID() string {
	return uuid.NewString()
}

// FieldID returns a new UUID
func (s *UUIDSource) FieldID() string {
	return uuid.NewString()
}
