package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

func testConfig() *Config {
	return &Config{
		apiURL:         "http://127.0.0.1:1/api",
		bind:           "127.0.0.1",
		cacheTTL:       time.Hour,
		categories:     6,
		clues:          5,
		fetchTimeout:   time.Second,
		poolMultiplier: 3,
		port:           8080,
	}
}

// seededShuffle is deterministic for a single build and safe to share
// between builds running at the same time.
func seededShuffle(seed uint64) shuffleFunc {
	var mu sync.Mutex
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	return func(n int, swap func(i, j int)) {
		mu.Lock()
		defer mu.Unlock()

		rnd.Shuffle(n, swap)
	}
}

// makeCategory returns a category whose clue ids and answers are unique to id.
func makeCategory(id int64, clues int) *RawCategory {
	category := &RawCategory{
		ID:    id,
		Title: fmt.Sprintf("category %d", id),
	}

	for i := range clues {
		category.Clues = append(category.Clues, RawClue{
			ID:       id*1000 + int64(i) + 1,
			Question: fmt.Sprintf("question %d-%d", id, i),
			Answer:   fmt.Sprintf("answer %d-%d", id, i),
		})
	}

	return category
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) RandomCategoryIDs(ctx context.Context, count int) ([]int64, error) {
	args := m.Called(ctx, count)
	ids, _ := args.Get(0).([]int64)

	return ids, args.Error(1)
}

func (m *mockSource) Category(ctx context.Context, id int64) (*RawCategory, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*RawCategory)

	return category, args.Error(1)
}

// fakeSource serves a fixed pool and generated categories. Category calls
// can be made to fail after a number of successes, or to block until released.
type fakeSource struct {
	mu       sync.Mutex
	pool     []int64
	clues    int
	failAt   int
	failWith error
	gate     chan struct{}
	calls    int
	requests []int64
}

func newFakeSource(categories, clues int) *fakeSource {
	pool := make([]int64, 0, categories*3)
	for i := range categories * 3 {
		pool = append(pool, int64(i%categories)+1)
	}

	return &fakeSource{pool: pool, clues: clues}
}

func (f *fakeSource) RandomCategoryIDs(ctx context.Context, count int) ([]int64, error) {
	return f.pool, nil
}

func (f *fakeSource) Category(ctx context.Context, id int64) (*RawCategory, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.requests = append(f.requests, id)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if f.failAt > 0 && call == f.failAt {
		return nil, f.failWith
	}

	return makeCategory(id, f.clues), nil
}

func (f *fakeSource) categoryCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (m *mockSource) expectPool(count int, ids []int64, err error) {
	m.On("RandomCategoryIDs", mock.Anything, count).Return(ids, err).Once()
}
