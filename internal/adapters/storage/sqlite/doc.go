// Package sqlite provides a slot storage backend backed by SQLite.
//
// Every area lives in the same slots table. Each write stamps the row with the
// next sequence number of the table so other processes can poll for changes.
// Deletes keep a tombstone row (NULL value) so pollers observe them.
package sqlite
