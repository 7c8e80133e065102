// Package database manages the connection to the collection database.
//
// The collection (notetypes, field definitions, notes) lives either in a
// local sqlite file (the default, matching a single-user desktop setup)
// or in a mysql server for shared collections. Connect returns a GORM
// handle configured with sensible pooling and timeouts; callers decide
// whether a failed connection is fatal.
package database
