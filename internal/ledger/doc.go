// Package ledger keeps a SQLite history of extraction runs.
package ledger
