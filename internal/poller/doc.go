// Package poller implements the Price Synchronizer.
//
// The Price Synchronizer:
//   - Pages through each instrument's daily prices until an empty page or the page cap
//   - Normalizes rows and drops the ones with missing or unparseable fields
//   - Merges each instrument's rows in a single store transaction
//   - Isolates per-instrument failures and aborts the cycle only when the store is down
package poller
