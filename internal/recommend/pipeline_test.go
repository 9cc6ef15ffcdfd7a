// Sillage - Product Recommendation and Similarity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sillage

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sillage/internal/breaker"
	"github.com/tomtom215/sillage/internal/cache"
	"github.com/tomtom215/sillage/internal/models"
)

var testEpoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type pipelineFixture struct {
	store    *memoryStore
	clock    *cache.ManualClock
	results  *cache.Cache[[]models.Product]
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, cfg *Config, products ...models.Product) *pipelineFixture {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	store := newMemoryStore(products...)
	clock := cache.NewManualClock(testEpoch)
	results := cache.New[[]models.Product]("test-"+t.Name(), cache.DefaultTTL, clock)
	stages := DefaultStages(store, store, store, NewCoPurchaseAggregator(store, store), cfg.RecentViews)
	return &pipelineFixture{
		store:    store,
		clock:    clock,
		results:  results,
		pipeline: NewPipeline(stages, results, cfg, zerolog.Nop()),
	}
}

// catalogX has an anchor product X (1), two similar products (10, 11) and
// popular products 20..23 with descending view counts.
func catalogX() []models.Product {
	return []models.Product{
		product(1, 500),
		product(10, 1),
		product(11, 2),
		product(20, 400),
		product(21, 300),
		product(22, 200),
		product(23, 100),
	}
}

func TestRecommendBlendsSimilarAndPopular(t *testing.T) {
	f := newPipelineFixture(t, nil, catalogX()...)
	f.store.setSimilar(1, 10, 11)

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 4, ProductID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// X itself is the most viewed product but is excluded.
	want := []int64{10, 11, 20, 21}
	if fmt.Sprint(ids(res.Products)) != fmt.Sprint(want) {
		t.Errorf("Recommend() = %v, want %v", ids(res.Products), want)
	}
	if res.CacheHit {
		t.Error("first call reported a cache hit")
	}
}

func TestRecommendStageOrderAndDedup(t *testing.T) {
	f := newPipelineFixture(t, nil, append(catalogX(), product(30, 0), product(31, 0))...)
	f.store.setSimilar(1, 10)
	// co-purchase repeats 10 and adds 30, 31
	f.store.orders = map[int64][]int64{
		1: {1, 10, 30},
		2: {1, 30, 31},
	}

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 5, ProductID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	want := []int64{10, 30, 31, 20, 21}
	if fmt.Sprint(ids(res.Products)) != fmt.Sprint(want) {
		t.Errorf("Recommend() = %v, want %v", ids(res.Products), want)
	}
}

func TestRecommendShortCircuits(t *testing.T) {
	f := newPipelineFixture(t, nil, catalogX()...)
	f.store.setSimilar(1, 10, 11, 20)

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 2, ProductID: 1, UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Products) != 2 {
		t.Fatalf("Recommend() returned %d products, want 2", len(res.Products))
	}

	for _, method := range []string{"ListOrderIDsContainingProduct", "GetRecentViews", "ListActiveInStockByViewCount"} {
		if n := f.store.callCount(method); n != 0 {
			t.Errorf("%s called %d times after the limit was met", method, n)
		}
	}
}

func TestRecommendDropsInactiveSimilarities(t *testing.T) {
	products := catalogX()
	products[1].Active = false // product 10
	f := newPipelineFixture(t, nil, products...)
	f.store.setSimilar(1, 10, 11, 99) // 99 does not exist

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 3, ProductID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []int64{11, 20, 21}
	if fmt.Sprint(ids(res.Products)) != fmt.Sprint(want) {
		t.Errorf("Recommend() = %v, want %v", ids(res.Products), want)
	}
}

func TestRecommendRecentViews(t *testing.T) {
	f := newPipelineFixture(t, nil, append(catalogX(), product(40, 0), product(41, 0), product(42, 0))...)
	f.store.views["u1"] = []int64{40, 41, 42}
	f.store.setSimilar(40, 10, 11)
	f.store.setSimilar(41, 11, 22)
	f.store.setSimilar(42, 23)

	tests := []struct {
		name          string
		limit         int
		want          []int64
		wantQueried42 bool
	}{
		{name: "expands views most recent first", limit: 3, want: []int64{10, 11, 22}, wantQueried42: false},
		{name: "falls through to popular", limit: 6, want: []int64{10, 11, 22, 23, 1, 20}, wantQueried42: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.results.Clear()
			before := f.store.callCount("GetSimilarities:42")

			res, err := f.pipeline.Recommend(context.Background(), Query{Limit: tt.limit, UserID: "u1"})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if fmt.Sprint(ids(res.Products)) != fmt.Sprint(tt.want) {
				t.Errorf("Recommend() = %v, want %v", ids(res.Products), tt.want)
			}
			queried := f.store.callCount("GetSimilarities:42") > before
			if queried != tt.wantQueried42 {
				t.Errorf("third view expanded = %v, want %v", queried, tt.wantQueried42)
			}
		})
	}
}

func TestRecommendNoInputsReturnsActiveInStock(t *testing.T) {
	products := catalogX()
	products[0].Active = false // most viewed, inactive
	products[3].Stock = 0      // second most viewed, out of stock
	f := newPipelineFixture(t, nil, products...)

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Products) == 0 {
		t.Fatal("Recommend() returned nothing")
	}
	for _, p := range res.Products {
		if !p.Active || !p.InStock() {
			t.Errorf("Recommend() returned product %d (active=%v stock=%d)", p.ID, p.Active, p.Stock)
		}
	}
	if res.Products[0].ID != 21 {
		t.Errorf("first product = %d, want 21", res.Products[0].ID)
	}
}

func TestRecommendNeverDuplicatesOrExceedsLimit(t *testing.T) {
	f := newPipelineFixture(t, nil, append(catalogX(), product(40, 0))...)
	f.store.setSimilar(1, 10, 11, 20, 10)
	f.store.setSimilar(40, 11, 21, 1)
	f.store.orders = map[int64][]int64{1: {1, 10, 20, 21}, 2: {1, 11, 22}}
	f.store.views["u1"] = []int64{40, 1}

	queries := []Query{{ProductID: 1}, {UserID: "u1"}, {ProductID: 1, UserID: "u1"}, {}}
	for _, q := range queries {
		for limit := 0; limit <= 9; limit++ {
			q.Limit = limit
			res, err := f.pipeline.Recommend(context.Background(), q)
			if err != nil {
				t.Fatalf("Recommend(%+v) error = %v", q, err)
			}
			if len(res.Products) > limit {
				t.Errorf("Recommend(%+v) returned %d products", q, len(res.Products))
			}
			seen := make(map[int64]bool)
			for _, p := range res.Products {
				if seen[p.ID] {
					t.Errorf("Recommend(%+v) duplicated product %d", q, p.ID)
				}
				if q.ProductID != 0 && p.ID == q.ProductID {
					t.Errorf("Recommend(%+v) returned the anchor product", q)
				}
				seen[p.ID] = true
			}
		}
	}
}

func TestRecommendLimits(t *testing.T) {
	f := newPipelineFixture(t, nil, catalogX()...)

	if _, err := f.pipeline.Recommend(context.Background(), Query{Limit: -1}); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("Recommend(-1) error = %v, want ErrInvalidLimit", err)
	}

	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 0, ProductID: 1})
	if err != nil {
		t.Fatalf("Recommend(0) error = %v", err)
	}
	if res.Products == nil || len(res.Products) != 0 {
		t.Errorf("Recommend(0) = %v, want empty list", res.Products)
	}
	if f.results.Len() != 0 {
		t.Error("zero-limit request was cached")
	}
}

func TestRecommendVeryLargeLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
	}{
		{name: "max int", limit: math.MaxInt},
		{name: "beyond memory", limit: math.MaxInt32 * 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, nil, catalogX()...)
			f.store.setSimilar(1, 10, 11)

			res, err := f.pipeline.Recommend(context.Background(), Query{Limit: tt.limit, ProductID: 1, UserID: "u1"})
			if err != nil {
				t.Fatalf("Recommend(%d) error = %v", tt.limit, err)
			}
			got := ids(res.Products)
			want := []int64{10, 11, 20, 21, 22, 23}
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Errorf("Recommend(%d) = %v, want %v", tt.limit, got, want)
			}
		})
	}
}

func TestRecommendCachesWithinTTL(t *testing.T) {
	f := newPipelineFixture(t, nil, catalogX()...)
	f.store.setSimilar(1, 10, 11)
	q := Query{Limit: 4, ProductID: 1}

	first, err := f.pipeline.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	sims := f.store.callCount("GetSimilarities")
	popular := f.store.callCount("ListActiveInStockByViewCount")

	// Source data changes, but the cached list must be served unchanged.
	f.store.setSimilar(1, 22)
	f.clock.Advance(cache.DefaultTTL - time.Second)

	second, err := f.pipeline.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !second.CacheHit {
		t.Error("second call within TTL missed the cache")
	}
	if fmt.Sprint(ids(first.Products)) != fmt.Sprint(ids(second.Products)) {
		t.Errorf("cached list = %v, want %v", ids(second.Products), ids(first.Products))
	}
	if f.store.callCount("GetSimilarities") != sims || f.store.callCount("ListActiveInStockByViewCount") != popular {
		t.Error("sources queried on a cache hit")
	}

	f.clock.Advance(time.Second + time.Nanosecond)

	third, err := f.pipeline.Recommend(context.Background(), q)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if third.CacheHit {
		t.Error("call after TTL served a cache hit")
	}
	if third.Products[0].ID != 22 {
		t.Errorf("recomputed list = %v, want it to start with 22", ids(third.Products))
	}
}

func TestRecommendCacheKeyIncludesAllInputs(t *testing.T) {
	keys := map[string]Query{}
	for _, q := range []Query{
		{Limit: 4},
		{Limit: 5},
		{Limit: 4, ProductID: 1},
		{Limit: 4, UserID: "u1"},
		{Limit: 4, ProductID: 1, UserID: "u1"},
	} {
		k := CacheKey(q)
		if other, dup := keys[k]; dup {
			t.Errorf("CacheKey(%+v) collides with %+v", q, other)
		}
		keys[k] = q
	}
	if CacheKey(Query{Limit: 3, ProductID: 7}) != CacheKey(Query{Limit: 3, ProductID: 7}) {
		t.Error("CacheKey is not deterministic")
	}
}

func TestRecommendStageFailureContinues(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   []int64
	}{
		{name: "similarities down", method: "GetSimilarities", want: []int64{23, 20, 21}},
		{name: "orders down", method: "ListOrderIDsContainingProduct", want: []int64{10, 20, 21}},
		{name: "popular down", method: "ListActiveInStockByViewCount", want: []int64{10, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, nil, catalogX()...)
			f.store.setSimilar(1, 10)
			f.store.orders = map[int64][]int64{1: {1, 23}}
			f.store.setErr(tt.method, errors.New("io timeout"))

			res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 3, ProductID: 1})
			if err != nil {
				t.Fatalf("Recommend() error = %v, want stage failure absorbed", err)
			}
			if fmt.Sprint(ids(res.Products)) != fmt.Sprint(tt.want) {
				t.Errorf("Recommend() = %v, want %v", ids(res.Products), tt.want)
			}
		})
	}
}

func TestRecommendStageTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StageTimeout = 20 * time.Millisecond
	store := newMemoryStore(catalogX()...)
	results := cache.New[[]models.Product]("test-timeout", cache.DefaultTTL, cache.NewManualClock(testEpoch))

	blocking := Stage{
		Name: "blocking",
		Fetch: func(ctx context.Context, _ Query, _ Accumulated) ([]models.Product, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	p := NewPipeline([]Stage{blocking, PopularStage(store)}, results, cfg, zerolog.Nop())

	res, err := p.Recommend(context.Background(), Query{Limit: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if fmt.Sprint(ids(res.Products)) != fmt.Sprint([]int64{1, 20}) {
		t.Errorf("Recommend() = %v, want [1 20]", ids(res.Products))
	}
}

func TestRecommendOpenBreakerSkipsStage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Breaker = breaker.Settings{MaxRequests: 1, Timeout: time.Hour, MinRequests: 1, FailureRatio: 0.5}
	f := newPipelineFixture(t, cfg, catalogX()...)
	f.store.setSimilar(1, 10)
	f.store.setErr("GetSimilarities", errors.New("down"))

	if _, err := f.pipeline.Recommend(context.Background(), Query{Limit: 2, ProductID: 1}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	calls := f.store.callCount("GetSimilarities")

	f.store.setErr("GetSimilarities", nil)
	res, err := f.pipeline.Recommend(context.Background(), Query{Limit: 3, ProductID: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if f.store.callCount("GetSimilarities") != calls {
		t.Error("open breaker still queried similarities")
	}
	if fmt.Sprint(ids(res.Products)) != fmt.Sprint([]int64{20, 21, 22}) {
		t.Errorf("Recommend() = %v, want popular fallback", ids(res.Products))
	}
}

func TestRecommendConcurrentMissesComputeOnce(t *testing.T) {
	f := newPipelineFixture(t, nil, catalogX()...)
	f.store.setSimilar(1, 10, 11)
	q := Query{Limit: 4, ProductID: 1}

	var wg sync.WaitGroup
	results := make([][]int64, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.pipeline.Recommend(context.Background(), q)
			if err != nil {
				t.Errorf("Recommend() error = %v", err)
				return
			}
			results[i] = ids(res.Products)
		}(i)
	}
	wg.Wait()

	if n := f.store.callCount("GetSimilarities"); n != 1 {
		t.Errorf("similarities queried %d times, want 1", n)
	}
	for i := 1; i < len(results); i++ {
		if fmt.Sprint(results[i]) != fmt.Sprint(results[0]) {
			t.Errorf("results[%d] = %v, want %v", i, results[i], results[0])
		}
	}
}

func TestCollectorTake(t *testing.T) {
	c := newCollector(3, 1)

	if got := c.take([]models.Product{{ID: 1}, {ID: 2}, {ID: 2}, {ID: 3}}); got != 2 {
		t.Errorf("take() accepted %d, want 2", got)
	}
	if c.Remaining() != 1 || c.Size() != 2 {
		t.Errorf("Remaining()=%d Size()=%d, want 1 and 2", c.Remaining(), c.Size())
	}
	if got := c.take([]models.Product{{ID: 4}, {ID: 5}}); got != 1 {
		t.Errorf("take() accepted %d, want 1", got)
	}
	if !c.full() {
		t.Error("collector should be full")
	}
	if !c.Seen(1) || c.Seen(5) {
		t.Error("Seen() wrong for excluded or rejected id")
	}
}
