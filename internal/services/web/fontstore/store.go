// Package fontstore holds the process-wide font list shared by every page.
//
// A Store is created once during composition and injected into modules. Pages
// read the current list on every render and request a background load on
// mount; they never wait for the load and never see a half-applied list.
package fontstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
	"github.com/louisbranch/typeshelf/internal/platform/timeouts"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
)

const loadKey = "fonts"

var tracer = otel.Tracer("github.com/louisbranch/typeshelf/internal/services/web/fontstore")

// Source is what pages need from the store.
type Source interface {
	Fonts() []fonts.Font
	LoadFonts(ctx context.Context)
}

// Subscriber is implemented by sources that announce list changes.
type Subscriber interface {
	Subscribe(fn func()) (cancel func())
}

// Invalidator is implemented by sources that can drop cached state and reload
// after a catalog write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Lister reads the full font list from the catalog.
type Lister interface {
	ListFonts(ctx context.Context, q query.Query) ([]fonts.Font, error)
}

// Option configures a Store.
type Option func(*Store)

// WithCache puts a shared cache in front of the catalog.
func WithCache(cache webstorage.FontListCache) Option {
	return func(s *Store) { s.cache = cache }
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoadTimeout caps one catalog read.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithInitial seeds the snapshot before any load.
func WithInitial(list []fonts.Font) Option {
	return func(s *Store) { s.fonts = fonts.Clone(list) }
}

// Store is a concurrency-safe font list with deduplicated background loads.
type Store struct {
	lister  Lister
	cache   webstorage.FontListCache
	logger  *zap.Logger
	timeout time.Duration

	mu       sync.RWMutex
	fonts    []fonts.Font
	err      error
	loadedAt time.Time

	group    singleflight.Group
	requests atomic.Int64
	inflight sync.WaitGroup

	// commitMu orders invalidations against load results. A load commits
	// only when generation is unchanged since its read began.
	commitMu   sync.Mutex
	generation uint64

	subMu   sync.Mutex
	subs    map[uint64]func()
	nextSub uint64
}

// New builds a store over lister.
func New(lister Lister, opts ...Option) *Store {
	s := &Store{
		lister:  lister,
		logger:  zap.NewNop(),
		timeout: timeouts.FontLoad,
		subs:    make(map[uint64]func()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Fonts returns a copy of the current list.
func (s *Store) Fonts() []fonts.Font {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := fonts.Clone(s.fonts)
	if out == nil {
		out = []fonts.Font{}
	}
	return out
}

// Err returns the error of the most recent load, or nil after a success.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// LoadedAt reports when the snapshot was last refreshed from the catalog.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// LoadRequests counts LoadFonts calls since the store was created.
func (s *Store) LoadRequests() int64 {
	return s.requests.Load()
}

// LoadFonts starts a background refresh and returns immediately. Concurrent
// requests share one catalog read. The read outlives ctx cancellation so a
// page that finishes rendering never aborts a shared load.
func (s *Store) LoadFonts(ctx context.Context) {
	s.requests.Add(1)
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_ = s.load(detached)
	}()
}

// Reload refreshes synchronously and returns the load error.
func (s *Store) Reload(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.load(ctx)
}

// Invalidate drops the shared cache entry and starts a background load that
// does not join a read already in flight. Reads that began before the call
// are discarded when they finish.
func (s *Store) Invalidate(ctx context.Context) {
	s.commitMu.Lock()
	s.generation++
	s.group.Forget(loadKey)
	if s.cache != nil {
		if err := s.cache.InvalidateFontList(ctx); err != nil {
			s.logger.Warn("invalidate font list cache", zap.Error(err))
		}
	}
	s.commitMu.Unlock()
	s.LoadFonts(ctx)
}

// Wait blocks until background loads started so far have finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// Replace swaps the snapshot directly and notifies subscribers.
func (s *Store) Replace(list []fonts.Font) {
	s.mu.Lock()
	s.fonts = fonts.Clone(list)
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to run after every list change. fn runs on the
// goroutine that applied the change and must not block. The returned cancel
// is safe to call more than once.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

func (s *Store) load(ctx context.Context) error {
	_, err, _ := s.group.Do(loadKey, func() (any, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		ctx, span := tracer.Start(ctx, "fontstore.Load")
		defer span.End()

		s.commitMu.Lock()
		gen := s.generation
		s.commitMu.Unlock()

		list, source, err := s.fetch(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.fail(gen, err)
			return nil, err
		}
		span.SetAttributes(
			attribute.Int("font.count", len(list)),
			attribute.String("font.source", source),
		)
		if !s.commit(ctx, gen, list, source) {
			span.SetAttributes(attribute.Bool("font.stale", true))
			s.logger.Debug("discarded font list read before invalidation", zap.Int("count", len(list)))
		}
		return nil, nil
	})
	return err
}

// commit fills the cache and applies list unless an invalidation happened
// after the read started.
func (s *Store) commit(ctx context.Context, gen uint64, list []fonts.Font, source string) bool {
	s.commitMu.Lock()
	if s.generation != gen {
		s.commitMu.Unlock()
		return false
	}
	if s.cache != nil && source == "catalog" {
		if err := s.cache.PutFontList(ctx, list); err != nil {
			s.logger.Warn("write font list cache", zap.Error(err))
		}
	}
	changed := s.swap(list)
	s.commitMu.Unlock()

	s.logger.Debug("fonts loaded", zap.Int("count", len(list)), zap.Bool("changed", changed))
	if changed {
		s.notify()
	}
	return true
}

func (s *Store) fetch(ctx context.Context) ([]fonts.Font, string, error) {
	if s.cache != nil {
		list, ok, err := s.cache.GetFontList(ctx)
		switch {
		case err != nil:
			s.logger.Warn("read font list cache", zap.Error(err))
		case ok:
			return list, "cache", nil
		}
	}

	if s.lister == nil {
		return nil, "", errNoLister
	}
	list, err := s.lister.ListFonts(ctx, query.Query{})
	if err != nil {
		return nil, "", err
	}
	return list, "catalog", nil
}

func (s *Store) fail(gen uint64, err error) {
	s.commitMu.Lock()
	current := s.generation == gen
	s.mu.Lock()
	if current {
		s.err = err
	}
	kept := len(s.fonts)
	s.mu.Unlock()
	s.commitMu.Unlock()
	s.logger.Error("load fonts", zap.Error(err), zap.Int("kept", kept))
}

func (s *Store) swap(list []fonts.Font) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := !sameList(s.fonts, list) || s.loadedAt.IsZero()
	s.fonts = fonts.Clone(list)
	s.err = nil
	s.loadedAt = time.Now().UTC()
	return changed
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// sameList compares catalog identity. Records are immutable once stored, so
// id and digest pin every other field.
func sameList(a, b []fonts.Font) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].SHA256 != b[i].SHA256 {
			return false
		}
	}
	return true
}

var (
	_ Source     = (*Store)(nil)
	_ Subscriber = (*Store)(nil)
)
