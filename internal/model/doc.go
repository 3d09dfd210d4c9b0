// Package model defines shared data types used across pricesync.
//
// All types mirror the relational schema created by the database package.
//
// Conventions:
//   - Prices and volumes: int64 in source currency units (no fractional part)
//   - Dates: calendar dates as time.Time at 00:00 UTC, rendered YYYY-MM-DD
//   - Codes: six-character instrument codes, zero-padded when numeric
package model
