package collection

import (
	"strings"

	"gorm.io/gorm"
)

// FieldSeparator joins note field values into a single stored column,
// following the Anki on-disk convention (ASCII unit separator).
const FieldSeparator = "\x1f"

// Notetype describes a record schema: a named, ordered list of fields.
type Notetype struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"size:255;uniqueIndex"`

	// Fields is the ordered field list; Ord is the stable positional index.
	Fields []FieldDef `gorm:"foreignKey:NotetypeID;references:ID"`
}

// FieldDef is one field descriptor within a notetype.
type FieldDef struct {
	NotetypeID int64  `gorm:"primaryKey"`
	Ord        int    `gorm:"primaryKey"`
	Name       string `gorm:"size:255"`
}

// FieldOrd returns the ordinal of the named field, or -1 if absent.
func (nt *Notetype) FieldOrd(name string) int {
	for _, f := range nt.Fields {
		if f.Name == name {
			return f.Ord
		}
	}
	return -1
}

// Note is one record instance belonging to a notetype.
// Values is the in-memory representation indexed by field ordinal; it is
// serialized into the flds column on save and restored on load.
type Note struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	NotetypeID int64  `gorm:"index"`
	FieldsBlob string `gorm:"column:flds"`

	Values []string `gorm:"-"`
}

// Value returns the field value at ord, or "" when ord is out of range.
func (n *Note) Value(ord int) string {
	if ord < 0 || ord >= len(n.Values) {
		return ""
	}
	return n.Values[ord]
}

// SetValue sets the field value at ord, growing Values if the schema has
// more fields than the stored blob carried.
func (n *Note) SetValue(ord int, value string) {
	if ord < 0 {
		return
	}
	for len(n.Values) <= ord {
		n.Values = append(n.Values, "")
	}
	n.Values[ord] = value
}

// BeforeSave serializes Values into the flds column.
func (n *Note) BeforeSave(_ *gorm.DB) error {
	n.FieldsBlob = strings.Join(n.Values, FieldSeparator)
	return nil
}

// AfterFind restores Values from the flds column.
func (n *Note) AfterFind(_ *gorm.DB) error {
	if n.FieldsBlob == "" {
		n.Values = []string{""}
		return nil
	}
	n.Values = strings.Split(n.FieldsBlob, FieldSeparator)
	return nil
}
