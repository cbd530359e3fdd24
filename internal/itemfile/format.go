package itemfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for item files whose extension has no codec.
var ErrUnsupportedFormat = errors.New("unsupported item file format")

// Format identifies an item file encoding.
type Format int

const (
	FormatJSON Format = iota + 1
	FormatTOML
	FormatSQLite
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatTOML:
		return "toml"
	case FormatSQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// DetectFormat maps a path's extension to its Format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return 0, fmt.Errorf("%w: %q (use .json, .toml, .db, .sqlite or .sqlite3)", ErrUnsupportedFormat, filepath.Base(path))
	}
}
