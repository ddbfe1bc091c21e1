// Package sqlite provides the font catalog backed by SQLite.
//
// Metadata and binaries live in separate tables so list queries never touch
// file payloads.
package sqlite
