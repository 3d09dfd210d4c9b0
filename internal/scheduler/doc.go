// Package scheduler drives synchronization cycles.
//
// A cycle refreshes the catalog when stale, reads the page cap and syncs
// prices for every known instrument. Between cycles the scheduler waits
// until the anchor time of the next calendar day.
package scheduler
