package defid

import (
	"fmt"

	"github.com/google/uuid"
)

// SpecificationID names one specification-body entity.
type SpecificationID uuid.UUID

// NoSpecificationID is the zero id; it never names a body.
var NoSpecificationID SpecificationID

// NewSpecificationID mints a fresh random id.
func NewSpecificationID() SpecificationID {
	return SpecificationID(uuid.New())
}

// ParseSpecificationID parses the textual form attached to spec tags.
func ParseSpecificationID(text string) (SpecificationID, error) {
	u, err := uuid.Parse(text)
	if err != nil {
		return NoSpecificationID, fmt.Errorf("invalid specification id %q: %w", text, err)
	}
	if u == uuid.Nil {
		return NoSpecificationID, fmt.Errorf("invalid specification id %q: nil uuid", text)
	}
	return SpecificationID(u), nil
}

func (s SpecificationID) String() string {
	return uuid.UUID(s).String()
}
