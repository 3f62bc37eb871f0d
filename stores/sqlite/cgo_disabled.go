//go:build !cgo

package sqlite

// CGOEnabled reports whether the sqlite store is built with cgo support.
// The go-sqlite3 driver needs cgo; the store tests skip without it.
const CGOEnabled = false
