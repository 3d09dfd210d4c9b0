// Package database provides PostgreSQL connection pool management and the
// relational schema shared by every store backend.
//
// Tables:
//   - company_info: one row per instrument (code, company, last_update)
//   - daily_price: one row per instrument per trading day, keyed (code, date)
package database
