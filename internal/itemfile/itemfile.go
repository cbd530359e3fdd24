package itemfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fifoq/internal/queue"
)

// Load reads every item stored at path, head first. It does not lock; use a
// Store for guarded access.
func Load(ctx context.Context, path string) ([]queue.Item, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat item file: %w", err)
	}

	switch format {
	case FormatSQLite:
		return loadSQLite(ctx, path)
	case FormatTOML:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read item file: %w", err)
		}
		return decodeTOML(data)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read item file: %w", err)
		}
		return queue.DecodeItems(data)
	}
}

// Save replaces the contents of path with items. Text formats are written to
// a temporary sibling and renamed into place.
func Save(ctx context.Context, path string, items []queue.Item) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create item directory: %w", err)
	}

	var data []byte
	switch format {
	case FormatSQLite:
		return saveSQLite(ctx, path, items)
	case FormatTOML:
		data, err = encodeTOML(items)
	default:
		data, err = queue.EncodeItems(items)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp item file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write item file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync item file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close item file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod item file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace item file: %w", err)
	}
	return nil
}
