// Package state persists the StateRecord: the last observed value of every
// watch target that has been read successfully at least once.
//
// Two backends are provided. JSONStore writes {"last_values": {...}} to a
// single file using write-temp-then-rename so the file is always either the
// old or the new content. SQLiteStore keeps one row per target and replaces
// the table inside a single transaction.
//
// Load never fails: a missing or unreadable store yields an empty Record and
// a logged warning.
package state
