// Package query evaluates the content-API query grammar (filters, sort,
// fields, populate, pagination) against an in-memory collection of review
// records and produces the response envelope a content-API client expects.
//
// The engine is stateless. Each call to Engine.Process allocates its own
// intermediate slices and never mutates the records it is handed, so a single
// Engine may serve any number of goroutines over a shared, read-only snapshot.
package query
