// Package collection implements the host collaborator surface: the storage
// model of an Anki-style flashcard collection.
//
// # Data Model
//
//   - Notetype: a record schema, an ordered list of named fields where each
//     field has a stable positional index (ordinal).
//   - FieldDef: one field descriptor (notetype, ordinal, name).
//   - Note: one record; its field values persist as a single column joined
//     by the 0x1f unit separator, the Anki on-disk convention.
//
// # Store
//
// Store wraps a GORM handle with the operations the cloze feature consumes:
// note read/flush, schema lookup with ordered fields, and selection
// enumeration for batch operations. Nothing here interprets field content;
// that is the cloze feature's job.
package collection
