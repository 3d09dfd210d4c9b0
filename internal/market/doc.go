// Package market implements the Catalog Synchronizer.
//
// The Registry:
//   - Refreshes the instrument catalog from the remote source at most once per calendar day
//   - Persists refreshed entries with today's date as their catalog update
//   - Falls back to the persisted catalog when the remote source fails
//   - Serves an immutable, code-sorted instrument snapshot to the price synchronizer
package market
