package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/louisbranch/typeshelf/internal/fonts"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/redis"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite"
)

// catalogSession bundles the catalog with the optional cache that must be
// invalidated after writes.
type catalogSession struct {
	catalog webstorage.FontCatalog
	cache   webstorage.FontListCache
	closers []func() error
}

func (c *cli) openCatalog(ctx context.Context) (*catalogSession, error) {
	path := strings.TrimSpace(c.cfg.DBPath)
	if path == "" {
		return nil, errors.New("--db-path is required")
	}
	catalog, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open font catalog: %w", err)
	}
	s := &catalogSession{catalog: catalog, closers: []func() error{catalog.Close}}
	if addr := strings.TrimSpace(c.cfg.RedisAddr); addr != "" {
		store, err := redis.Dial(ctx, addr)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.cache = store
		s.closers = append(s.closers, store.Close)
	}
	return s, nil
}

func (s *catalogSession) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// importFile parses path and stores it. Duplicates report added=false.
func (s *catalogSession) importFile(ctx context.Context, path string, uploadedBy string) (fonts.Font, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fonts.Font{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	meta, err := fonts.Parse(data)
	if err != nil {
		return fonts.Font{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	font, err := s.catalog.PutFont(ctx, meta.Apply(fonts.Font{UploadedBy: uploadedBy}), data)
	if errors.Is(err, webstorage.ErrDuplicate) {
		return meta.Apply(fonts.Font{}), false, nil
	}
	if err != nil {
		return fonts.Font{}, false, fmt.Errorf("store %s: %w", path, err)
	}
	return font, true, nil
}

func (s *catalogSession) invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateFontList(ctx); err != nil {
		return fmt.Errorf("invalidate font list cache: %w", err)
	}
	return nil
}

// finish invalidates the cache when any font was added, including when the
// command stops on a later error.
func (s *catalogSession) finish(ctx context.Context, added int, err error) error {
	if added == 0 {
		return err
	}
	return errors.Join(err, s.invalidate(ctx))
}
