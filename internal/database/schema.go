package database

// Schema holds the DDL statements, valid for both PostgreSQL and SQLite.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS company_info (
		code        VARCHAR(20) NOT NULL,
		company     VARCHAR(100) NOT NULL,
		last_update DATE        NOT NULL,
		PRIMARY KEY (code)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_price (
		code   VARCHAR(20) NOT NULL,
		date   DATE        NOT NULL,
		open   BIGINT      NOT NULL,
		high   BIGINT      NOT NULL,
		low    BIGINT      NOT NULL,
		close  BIGINT      NOT NULL,
		diff   BIGINT      NOT NULL,
		volume BIGINT      NOT NULL,
		PRIMARY KEY (code, date)
	)`,
}
