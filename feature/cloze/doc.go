// Package cloze implements cloze-deletion editing for notetypes that are not
// native cloze models.
//
// A marker span has the form ((c<N>::<payload>)) where N is a positive
// integer deletion identifier; the payload is matched non-greedily up to the
// first closing parens and may be empty. A field named <Base>Cloze carries
// the marked content, and each auxiliary field <Base>Cloze<N> holds "1" when
// a card for deletion N should exist and is inactive otherwise.
//
// # Components
//
//   - Scanner (ScanNums): extracts the set of deletion identifiers from a
//     text blob. Pure, never fails.
//   - Reconciler (Reconcile): aligns the auxiliary fields with an identifier
//     set under a safe or force overwrite policy. The safe policy never
//     touches a field holding anything but a generated marker value.
//   - Controller: the edit-session state machine behind the three triggers:
//     insert-marker requests, live field-change events, and batch operations.
//   - Service/Handler/Feature: wiring to the collection store and the Fiber
//     bridge the editor webview talks to.
//
// # Batch Operations
//
// AutoCloze fills empty <Base>Cloze fields from their <Base> source fields
// as a single c1 deletion; CreateMissing force-reconciles auxiliary fields
// for notes edited outside the live path. Both snapshot the selection into
// an undo checkpoint first and process notes independently, so a re-run
// after a partial failure converges.
package cloze
