// Package server holds configuration for the HTTP bridge server.
//
// The bridge is the surface the editor webview talks to: insert-marker
// requests, live field-change events, and batch operations all arrive here.
// It typically listens on localhost only; the optional API key protects
// setups where the collection database is shared over a network.
package server
