// Package store is the gateway's read-only view of the server database.
//
// It answers the three questions the credential extractor asks: is this
// access token still live, which bot owns this token hash, and what are
// this user's flags. Two SQLite drivers are supported: "sqlite"
// (modernc.org/sqlite, pure Go, the default) and "sqlite3"
// (github.com/mattn/go-sqlite3, requires cgo).
package store
