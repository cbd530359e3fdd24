// Package itemfile persists queue items between fifoq invocations.
//
// The storage format follows the file extension: .json holds a JSON array,
// .toml holds an [[items]] array of tables, and .db/.sqlite/.sqlite3 hold a
// SQLite database with one row per item. A missing file reads as an empty
// queue. Every read takes a shared flock on "<path>.lock" and every rewrite
// takes an exclusive one, so concurrent commands never interleave a
// load-modify-save cycle.
package itemfile
