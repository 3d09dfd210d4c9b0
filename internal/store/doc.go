// Package store persists instruments and daily prices.
//
// Two backends implement Store:
//   - Postgres: pgx connection pool, production
//   - SQLite: sqlx over mattn/go-sqlite3, local runs and tests
//
// Every write is a merge-upsert keyed on the table's primary key, so
// re-applying the same rows never duplicates or appends. Each call that
// writes runs in a single transaction.
package store
