package cloze

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"cloze-manager/core/collection"

	"go.uber.org/zap"
)

// Suffix is the naming convention marker-bearing fields end with: a field
// named <Base>Cloze carries markers, <Base>Cloze<N> generate the cards, and
// <Base> is the unmarked source field.
const Suffix = "Cloze"

// Session is the currently open record in the editor: one note, its schema,
// and the focused field ordinal.
type Session struct {
	Note       *collection.Note
	Notetype   *collection.Notetype
	CurrentOrd int
}

// fieldName returns the name of the session field at ord, or an error when
// the ordinal lies outside the schema.
func (s *Session) fieldName(ord int) (string, error) {
	for _, f := range s.Notetype.Fields {
		if f.Ord == ord {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("field ordinal %d not in notetype %q", ord, s.Notetype.Name)
}

// FieldEvent is a live text-change notification from the editor, fired on
// blur or keystroke while editing.
type FieldEvent struct {
	// Ord identifies the edited field within the schema.
	Ord int
	// NoteID is the record identity token carried by the event; events for a
	// note other than the currently open one are stale and ignored.
	NoteID int64
	// Content is the field's new text.
	Content string
}

// Outcome carries the side effects of a controller entry point: editor
// commands batched into one script, an optional transient notice, and the
// field updates already applied to the note.
type Outcome struct {
	Commands []string
	Notice   string
	Updates  []FieldUpdate
}

// Script joins the commands into the single batched script the view layer
// executes. Empty when there is nothing to run.
func (o Outcome) Script() string {
	if len(o.Commands) == 0 {
		return ""
	}
	return strings.Join(o.Commands, ";") + ";"
}

// Controller drives the scanner and reconciler in response to editor
// triggers. It holds no per-record state; the session is passed in.
type Controller struct {
	logger *zap.Logger
}

// NewController creates an edit-session controller.
func NewController(logger *zap.Logger) *Controller {
	return &Controller{logger: logger}
}

// InsertCloze handles an insert-marker request for the session's focused
// field. When reuse is set (the secondary-action modifier was held), the
// highest existing identifier is proposed instead of the next one.
func (c *Controller) InsertCloze(sess *Session, reuse bool) Outcome {
	name, err := sess.fieldName(sess.CurrentOrd)
	if err != nil {
		c.logger.Warn("Insert requested for unknown field", zap.Error(err))
		return Outcome{}
	}

	content := sess.Note.Value(sess.CurrentOrd)
	if content == "" {
		return c.populateEmptyField(sess, name)
	}

	if !strings.HasSuffix(name, Suffix) {
		return Outcome{Notice: "Cannot cloze unless field ends in name Cloze"}
	}

	nums := ScanNums(content)
	next := 1
	if len(nums) > 0 {
		next = maxNum(nums)
		if !reuse {
			next++
		}
	}

	out := Outcome{
		Commands: []string{fmt.Sprintf("wrap('((c%d::', '))')", next)},
	}

	nums[next] = struct{}{}
	updates, found := Reconcile(sess.Note, nums, name, sess.Notetype.Fields, PolicySafe)
	out.Updates = updates
	for _, u := range updates {
		out.Commands = append(out.Commands, fieldSyncCommand(u))
	}

	if missing := missingNums(nums, found); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, n := range missing {
			names = append(names, fmt.Sprintf("%s%d", name, n))
		}
		out.Notice = "Not enough cloze fields. Missing: " + strings.Join(names, ", ")
	}

	return out
}

// populateEmptyField implements the convenience copy: an empty <Base>Cloze
// field is filled from the <Base> source field instead of inserting a marker.
func (c *Controller) populateEmptyField(sess *Session, name string) Outcome {
	if !strings.HasSuffix(name, Suffix) {
		return Outcome{Notice: fmt.Sprintf(
			"Cannot populate empty field %s because name does not end in Cloze", name)}
	}

	sourceName := strings.TrimSuffix(name, Suffix)
	sourceOrd := sess.Notetype.FieldOrd(sourceName)
	if sourceOrd < 0 {
		return Outcome{Notice: fmt.Sprintf(
			"Cannot populate empty field %s because other field %s was not found to copy from",
			name, sourceName)}
	}

	content := sess.Note.Value(sourceOrd)
	return Outcome{
		Commands: []string{fmt.Sprintf("setFormat('inserthtml', %s)", jsonEscape(content))},
	}
}

// HandleFieldEvent handles a live text-change notification. Stale events
// (wrong note) and events for fields outside the naming convention return an
// empty outcome with no error. An error return signals an internal fault the
// boundary must swallow; the host's own event handling always runs after.
func (c *Controller) HandleFieldEvent(sess *Session, evt FieldEvent) (Outcome, error) {
	if sess == nil || sess.Note == nil {
		return Outcome{}, nil
	}
	if evt.NoteID == 0 || evt.NoteID != sess.Note.ID {
		// The user has since moved to a different record.
		return Outcome{}, nil
	}

	name, err := sess.fieldName(evt.Ord)
	if err != nil {
		return Outcome{}, err
	}
	if !strings.HasSuffix(name, Suffix) {
		return Outcome{}, nil
	}

	nums := ScanNums(evt.Content)
	updates, _ := Reconcile(sess.Note, nums, name, sess.Notetype.Fields, PolicySafe)

	out := Outcome{Updates: updates}
	for _, u := range updates {
		out.Commands = append(out.Commands, fieldSyncCommand(u))
	}
	return out, nil
}

// fieldSyncCommand renders the editor script that mirrors one field update
// into the webview, keeping note and UI consistent with one another.
func fieldSyncCommand(u FieldUpdate) string {
	return fmt.Sprintf(`$("#f" + %d).html(%s)`, u.Ord, jsonEscape(u.Value))
}

func jsonEscape(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func maxNum(nums map[int]struct{}) int {
	max := 0
	for n := range nums {
		if n > max {
			max = n
		}
	}
	return max
}

// missingNums returns nums not covered by found, ascending.
func missingNums(nums, found map[int]struct{}) []int {
	var missing []int
	for n := range nums {
		if _, ok := found[n]; !ok {
			missing = append(missing, n)
		}
	}
	sort.Ints(missing)
	return missing
}
