// Package keyspace defines the byte-ordered keys produced by an index and the
// closed key ranges used to scan them.
//
// Keys compare byte-lexicographically, which is the order of an ordered
// key-value store. A Range is closed on both ends: [Start, End]. The helpers in
// this package sort, coalesce and merge range sets so a query can be expressed
// as a bounded number of scans.
package keyspace
