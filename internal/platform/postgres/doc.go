// Package postgres provides PostgreSQL-specific implementations of the read-side
// post stores defined in the internal/store package, the geohash scheme used
// for nearby lookups, and the embedded goose migrations for the posts schema.
package postgres
