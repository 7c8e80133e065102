// Package utils provides loose-typed conversion helpers.
//
// The editor bridge receives JSON payloads whose field types depend on the
// webview's serializer (numbers may arrive as float64 or string). These
// helpers normalize such values without panicking on surprises.
package utils
