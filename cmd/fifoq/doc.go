// Package main hosts the fifoq CLI entrypoint and command graph.
//
// Every command loads configuration once, opens the item file named by
// queue.items_path (or --items), and performs a single locked read or
// load-modify-save cycle through internal/itemfile. Queue semantics live in
// internal/queue; this package only parses flags and renders results.
package main
