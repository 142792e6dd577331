package source

import (
	"fmt"
)

// Span is a byte range inside one file. The zero Span is the synthetic
// position used for whole-pass diagnostics that have no location.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// IsSynthetic reports whether the span carries no location.
func (s Span) IsSynthetic() bool {
	return s == Span{}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover extends s so that it also covers other (same file only).
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
