package limits

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okean-yachts/okean-cpq/internal/pricing/policy"
)

type stubRepo struct {
	mu      sync.Mutex
	configs map[LimitType]Config
	err     error
	fetches int
	block   chan struct{}
}

func newStubRepo() *stubRepo {
	return &stubRepo{configs: map[LimitType]Config{
		LimitTypeBase:    {LimitType: LimitTypeBase, NoApprovalMax: 5, DirectorApprovalMax: 12, AdminApprovalRequiredAbove: 20},
		LimitTypeOptions: {LimitType: LimitTypeOptions, NoApprovalMax: 4, DirectorApprovalMax: 9, AdminApprovalRequiredAbove: 18},
	}}
}

func (s *stubRepo) List(ctx context.Context) ([]Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]Config, 0, len(s.configs))
	for _, c := range s.configs {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubRepo) GetByType(ctx context.Context, lt LimitType) (*Config, error) {
	s.mu.Lock()
	s.fetches++
	block := s.block
	err := s.err
	c, ok := s.configs[lt]
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *stubRepo) Update(ctx context.Context, cfg Config) (*Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.configs[cfg.LimitType]; !ok {
		return nil, ErrNotFound
	}
	s.configs[cfg.LimitType] = cfg
	return &cfg, nil
}

func (s *stubRepo) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubRepo) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCacheGetFetchesAndCaches(t *testing.T) {
	repo := newStubRepo()
	cache := NewCache(repo, testLogger(), DefaultTTL)

	set := cache.Get(context.Background())
	assert.Equal(t, 5.0, set.Base.NoApprovalMax)
	assert.Equal(t, 4.0, set.Options.NoApprovalMax)

	before := repo.fetchCount()
	_ = cache.Get(context.Background())
	assert.Equal(t, before, repo.fetchCount(), "fresh cache must not hit the store")
}

func TestCacheFallbackIsStableAcrossCalls(t *testing.T) {
	repo := newStubRepo()
	repo.setErr(errors.New("connection refused"))
	cache := NewCache(repo, testLogger(), DefaultTTL)

	first := cache.Get(context.Background())
	second := cache.Get(context.Background())
	require.Equal(t, first, second)
	assert.Equal(t, DefaultSet(), first)
}

func TestCacheMissingRowFallsBackToDefaults(t *testing.T) {
	repo := newStubRepo()
	delete(repo.configs, LimitTypeOptions)
	cache := NewCache(repo, testLogger(), DefaultTTL)

	// A partial configuration is treated as no configuration: the whole
	// snapshot degrades to the defaults rather than mixing sources.
	set := cache.Get(context.Background())
	assert.Equal(t, DefaultSet(), set)
}

func TestCacheInvalidateForcesRefetch(t *testing.T) {
	repo := newStubRepo()
	cache := NewCache(repo, testLogger(), DefaultTTL)

	_ = cache.Get(context.Background())
	repo.mu.Lock()
	repo.configs[LimitTypeBase] = Config{LimitType: LimitTypeBase, NoApprovalMax: 7, DirectorApprovalMax: 14, AdminApprovalRequiredAbove: 21}
	repo.mu.Unlock()

	stale := cache.Get(context.Background())
	assert.Equal(t, 5.0, stale.Base.NoApprovalMax, "within TTL the cached value is served")

	cache.Invalidate()
	fresh := cache.Get(context.Background())
	assert.Equal(t, 7.0, fresh.Base.NoApprovalMax)
}

func TestCacheCurrentServesDefaultsOnColdStart(t *testing.T) {
	repo := newStubRepo()
	cache := NewCache(repo, testLogger(), DefaultTTL)

	var _ policy.LimitsProvider = cache
	set := cache.Current()
	assert.Equal(t, DefaultSet(), set, "cold Current must not block on the store")
}

func TestCacheCollapsesConcurrentFetches(t *testing.T) {
	repo := newStubRepo()
	release := make(chan struct{})
	repo.block = release
	cache := NewCache(repo, testLogger(), DefaultTTL)

	const callers = 10
	results := make([]policy.LimitSet, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = cache.Get(context.Background())
		}()
	}

	// Let every caller reach the in-flight fetch before releasing the store.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 2, repo.fetchCount(), "concurrent misses must share one store round trip")
	for _, set := range results {
		assert.Equal(t, 5.0, set.Base.NoApprovalMax)
	}
}
