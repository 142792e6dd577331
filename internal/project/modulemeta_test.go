package project

import (
	"testing"

	"specgraph/internal/defid"
)

func TestIsValidModuleName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"bank", true},
		{"_priv", true},
		{"core-utils2", true},
		{"", false},
		{"2fast", false},
		{"-dash", false},
		{"a/b", false},
		{"модуль", false},
	}
	for _, tt := range tests {
		if got := IsValidModuleName(tt.name); got != tt.want {
			t.Fatalf("IsValidModuleName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStableModuleID(t *testing.T) {
	a := StableModuleID("bank", "0.1.0")
	if a == defid.LocalModule {
		t.Fatalf("stable id must not be the local module")
	}
	if b := StableModuleID("bank", "0.1.0"); a != b {
		t.Fatalf("stable id is not stable: %s vs %s", a, b)
	}
	if c := StableModuleID("bank", "0.2.0"); a == c {
		t.Fatalf("disambiguator ignored")
	}
	// "é" precomposed and decomposed must agree
	if StableModuleID("caf\u00e9", "") != StableModuleID("cafe\u0301", "") {
		t.Fatalf("name is not normalized")
	}
	// the separator keeps name/disambiguator boundaries apart
	if StableModuleID("ab", "c") == StableModuleID("a", "bc") {
		t.Fatalf("boundary collision")
	}
}

func TestCombineDependsOnOrder(t *testing.T) {
	content := DigestOf([]byte("module: a"))
	d1 := DigestOf([]byte("b"))
	d2 := DigestOf([]byte("c"))
	if Combine(content, d1, d2) == Combine(content, d2, d1) {
		t.Fatalf("combine must be order sensitive")
	}
	if Combine(content) == content {
		t.Fatalf("combine must rehash")
	}
}
