package cloze

import (
	"strconv"
	"strings"

	"cloze-manager/core/collection"
)

// ActiveValue is the canonical auxiliary field value that generates a card.
const ActiveValue = "1"

// InactivePlaceholder is the display placeholder written into inactive
// auxiliary fields on interactive paths, so the editor shows a non-empty
// cell the user can tell apart from untouched fields.
const InactivePlaceholder = "<br>"

// Policy controls how the reconciler treats existing auxiliary field values.
type Policy int

const (
	// PolicySafe only overwrites values that are themselves generated
	// markers (active, empty, or the display placeholder). Anything else is
	// treated as manually authored and left untouched. Inactive fields
	// receive the display placeholder.
	PolicySafe Policy = iota

	// PolicyForce overwrites whenever the desired value differs from the
	// current one, regardless of content. Inactive fields receive a true
	// empty string.
	PolicyForce
)

// FieldUpdate is one emitted field mutation, paired with the ordinal the
// UI-sync command targets.
type FieldUpdate struct {
	Ord   int
	Name  string
	Value string
}

// Reconcile aligns the numbered auxiliary fields of baseField with the given
// identifier set: for every schema field named baseField followed by a
// positive-integer suffix, the desired value is active iff its number is in
// nums. Emitted updates mutate the note in place. The returned set holds the
// numbers for which an auxiliary field existed, letting the caller detect
// referenced identifiers with no field to hold them.
func Reconcile(note *collection.Note, nums map[int]struct{}, baseField string, fields []collection.FieldDef, policy Policy) ([]FieldUpdate, map[int]struct{}) {
	inactive := ""
	if policy == PolicySafe {
		inactive = InactivePlaceholder
	}

	found := make(map[int]struct{})
	var updates []FieldUpdate

	for _, f := range fields {
		num, ok := auxFieldNum(f.Name, baseField)
		if !ok {
			continue
		}
		found[num] = struct{}{}

		desired := inactive
		if _, in := nums[num]; in {
			desired = ActiveValue
		}

		current := note.Value(f.Ord)
		switch policy {
		case PolicySafe:
			if !overwritable(current) {
				continue
			}
		case PolicyForce:
			if current == desired {
				continue
			}
		}

		note.SetValue(f.Ord, desired)
		updates = append(updates, FieldUpdate{Ord: f.Ord, Name: f.Name, Value: desired})
	}

	return updates, found
}

// auxFieldNum reports whether name is baseField followed by a
// positive-integer suffix, and returns that number. The match is an exact
// prefix match: "ExpressionCloze12" matches base "ExpressionCloze",
// "ExpressionClozeExtra1" does not.
func auxFieldNum(name, baseField string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, baseField)
	if !ok || suffix == "" {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	num, err := strconv.Atoi(suffix)
	if err != nil || num < 1 {
		return 0, false
	}
	return num, true
}

// overwritable reports whether a current value is itself a generated marker
// and therefore safe to replace without clobbering user content.
func overwritable(current string) bool {
	switch strings.TrimSpace(current) {
	case ActiveValue, "", InactivePlaceholder:
		return true
	default:
		return false
	}
}
