// Package ingest encodes streams of records into index entries and hands them
// to a storage Sink.
//
// Records are routed by index id through an explicit Registry of adapters.
// Encoding runs in parallel across records; writes to the sink happen in
// input order, one batch at a time.
package ingest
