package cloze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanNums(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []int
	}{
		{"TwoMarkers", "((c1::I)) ((c2::am)) hungry.", []int{1, 2}},
		{"NoMarkers", "no markers here", nil},
		{"Dedup", "((c1::a)) ((c1::b))", []int{1}},
		{"EmptyPayload", "((c1::))", []int{1}},
		{"NonContiguous", "((c2::x)) and ((c7::y))", []int{2, 7}},
		{"MultiDigit", "((c12::many))", []int{12}},
		{"ZeroIdentifier", "((c0::x))", nil},
		{"Unclosed", "((c1::never closed", nil},
		{"MissingSeparator", "((c1 x))", nil},
		{"NestedMarkup", "((c1::<b>bold</b>)) tail", []int{1}},
		{"Multiline", "((c1::first))\n((c2::second))", []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanNums(tt.content)
			assert.Len(t, got, len(tt.want))
			for _, n := range tt.want {
				assert.Contains(t, got, n)
			}
		})
	}
}

func TestScanNumsNonGreedy(t *testing.T) {
	// The payload stops at the first closing parens, so a second marker on
	// the same line is matched separately rather than swallowed.
	got := ScanNums("((c1::a)) between ((c3::b))")
	assert.Contains(t, got, 1)
	assert.Contains(t, got, 3)
	assert.Len(t, got, 2)
}
