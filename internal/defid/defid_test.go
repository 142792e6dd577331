package defid

import (
	"slices"
	"testing"
)

func TestRebaseLocalize(t *testing.T) {
	const self ModuleID = 0xabc
	const other ModuleID = 0x123

	local := Local(7)
	rebased := local.Rebase(self)
	if rebased != Foreign(self, 7) {
		t.Fatalf("Rebase = %v", rebased)
	}
	if back := rebased.Localize(self); back != local {
		t.Fatalf("Localize(self) = %v, want %v", back, local)
	}
	if got := rebased.Localize(other); got != rebased {
		t.Fatalf("Localize(other) changed the id: %v", got)
	}
	foreign := Foreign(other, 3)
	if got := foreign.Rebase(self); got != foreign {
		t.Fatalf("Rebase of foreign id = %v", got)
	}
}

func TestForeignRejectsLocalModule(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	_ = Foreign(LocalModule, 1)
}

func TestAsLocal(t *testing.T) {
	if id, ok := Local(4).AsLocal(); !ok || id != 4 {
		t.Fatalf("AsLocal = %v, %v", id, ok)
	}
	if _, ok := Foreign(9, 4).AsLocal(); ok {
		t.Fatalf("foreign id reported as local")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("ExpectLocal on foreign id must panic")
		}
	}()
	Foreign(9, 4).ExpectLocal()
}

func TestLessOrdersByModuleThenIndex(t *testing.T) {
	ids := []DefID{Foreign(2, 1), Local(5), Foreign(1, 9), Local(1)}
	slices.SortFunc(ids, func(a, b DefID) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	want := []DefID{Local(1), Local(5), Foreign(1, 9), Foreign(2, 1)}
	if !slices.Equal(ids, want) {
		t.Fatalf("sorted = %v, want %v", ids, want)
	}
}

func TestParseDefID(t *testing.T) {
	tests := []struct {
		in   string
		want DefID
		ok   bool
	}{
		{"1f::7", Foreign(0x1f, 7), true},
		{"0::3", Local(3), true},
		{"1f", DefID{}, false},
		{"zz::1", DefID{}, false},
		{"1f::-1", DefID{}, false},
	}
	for _, tt := range tests {
		got, err := ParseDefID(tt.in)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseDefID(%q) err = %v", tt.in, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("ParseDefID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	if s := Local(2).String(); s != "local#2" {
		t.Fatalf("local = %q", s)
	}
	if s := Foreign(0x1f, 7).String(); s != "1f#7" {
		t.Fatalf("foreign = %q", s)
	}
	if NoLocalID.IsValid() || !LocalID(1).IsValid() {
		t.Fatalf("IsValid mismatch")
	}
}

func TestSpecificationID(t *testing.T) {
	const text = "0b7c5a9e-6c1e-4a53-9d1f-3c2b6a1d9e01"
	id, err := ParseSpecificationID(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.String() != text {
		t.Fatalf("String = %q", id.String())
	}
	if _, err := ParseSpecificationID("00000000-0000-0000-0000-000000000000"); err == nil {
		t.Fatalf("nil uuid accepted")
	}
	if _, err := ParseSpecificationID("not-a-uuid"); err == nil {
		t.Fatalf("garbage accepted")
	}
	if a, b := NewSpecificationID(), NewSpecificationID(); a == b || a == NoSpecificationID {
		t.Fatalf("fresh ids collide: %v %v", a, b)
	}
}
