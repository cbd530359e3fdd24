// Package config loads, normalizes, and validates fifoq configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FIFOQ_ITEMS environment
// fallback. Named prune rules are stored in their JSON filter form and are
// checked with queue.ParseFilter during validation, so a bad rule fails at
// load time rather than mid-prune.
package config
