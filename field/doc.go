// Package field adapts typed record attributes into the native values an
// index dimension consumes, and back.
//
// A Handler reads one or more attributes of a Record and produces an
// IndexValue: a raw range for one dimension plus the visibility label that
// travels with it. Handlers never enforce visibility; they only thread the
// label through to storage.
package field
