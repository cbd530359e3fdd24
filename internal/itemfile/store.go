package itemfile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fifoq/internal/config"
	"fifoq/internal/logging"
	"fifoq/internal/queue"
)

// Store guards one item file with its sidecar lock.
type Store struct {
	path        string
	format      Format
	lockTimeout time.Duration
	logger      *slog.Logger
}

// Open validates path's format and returns a Store for it. The file itself is
// not touched until Read or Update.
func Open(path string, lockTimeout time.Duration, logger *slog.Logger) (*Store, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		path:        path,
		format:      format,
		lockTimeout: lockTimeout,
		logger:      logging.NewComponentLogger(logger, "itemfile"),
	}, nil
}

// OpenConfig opens the item file named by cfg.
func OpenConfig(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("open item file: nil config")
	}
	return Open(cfg.Queue.ItemsPath, cfg.LockTimeout(), logger)
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Format returns the encoding selected from the path's extension.
func (s *Store) Format() Format { return s.format }

// Read loads the queue under a shared lock.
func (s *Store) Read(ctx context.Context) (*queue.Queue, error) {
	lock, err := Lock(ctx, s.path, s.lockTimeout, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	items, err := Load(ctx, s.path)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "item file loaded",
		logging.ItemsPath(s.path),
		logging.String("format", s.format.String()),
		logging.Int("count", len(items)),
	)
	return queue.New(items), nil
}

// Update loads the queue under an exclusive lock, applies fn, and saves the
// result. Nothing is written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(*queue.Queue) error) error {
	lock, err := Lock(ctx, s.path, s.lockTimeout, true)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	items, err := Load(ctx, s.path)
	if err != nil {
		return err
	}
	q := queue.New(items)
	before := q.Len()
	if err := fn(q); err != nil {
		return err
	}
	if err := Save(ctx, s.path, q.Items()); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "item file saved",
		logging.ItemsPath(s.path),
		logging.String("format", s.format.String()),
		logging.Int("before", before),
		logging.Int("count", q.Len()),
	)
	return nil
}
