package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJService_RandomCategoryIDs(t *testing.T) {
	t.Run("Harvests category ids and nulls out malformed entries", func(t *testing.T) {
		// Given: an api returning a mix of good and broken clues
		var gotCount string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/random", r.URL.Path)
			gotCount = r.URL.Query().Get("count")
			_, _ = w.Write([]byte(`[
				{"id": 1, "category_id": 10},
				{"id": 2, "category_id": null},
				{"id": 3},
				{"id": 4, "category_id": "eleven"},
				{"id": 5, "category_id": 12}
			]`))
		}))
		defer srv.Close()

		api := newJService(srv.URL+"/api/", time.Second)

		// When: the pool is requested
		ids, err := api.RandomCategoryIDs(context.Background(), 5)

		// Then: every entry is represented, with unusable ones as zero
		require.NoError(t, err)
		assert.Equal(t, "5", gotCount)
		assert.Equal(t, []int64{10, 0, 0, 0, 12}, ids)
	})

	t.Run("Non-2xx status is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newJService(srv.URL, time.Second).RandomCategoryIDs(context.Background(), 3)

		require.ErrorIs(t, err, ErrFetchFailed)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("Garbage body is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		_, err := newJService(srv.URL, time.Second).RandomCategoryIDs(context.Background(), 3)

		require.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("Slow responses time out", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := newJService(srv.URL, 50*time.Millisecond).RandomCategoryIDs(context.Background(), 3)

		require.ErrorIs(t, err, ErrFetchFailed)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestJService_Category(t *testing.T) {
	t.Run("Decodes the category and tolerates broken clues", func(t *testing.T) {
		// Given: a category containing an undecodable clue
		var gotID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/category", r.URL.Path)
			gotID = r.URL.Query().Get("id")
			_, _ = w.Write([]byte(`{
				"id": 42,
				"title": "potent potables",
				"clues_count": 3,
				"clues": [
					{"id": 1, "question": "Gin and vermouth", "answer": "Martini", "value": 200},
					{"id": "two", "question": "broken"},
					{"id": 3, "question": null, "answer": "Nothing"}
				]
			}`))
		}))
		defer srv.Close()

		// When: the category is fetched
		category, err := newJService(srv.URL, time.Second).Category(context.Background(), 42)

		// Then: all clues are present, the broken one zeroed
		require.NoError(t, err)
		assert.Equal(t, "42", gotID)
		assert.Equal(t, int64(42), category.ID)
		assert.Equal(t, "potent potables", category.Title)
		assert.Equal(t, []RawClue{
			{ID: 1, Question: "Gin and vermouth", Answer: "Martini"},
			{},
			{ID: 3, Question: "", Answer: "Nothing"},
		}, category.Clues)
	})

	t.Run("Missing category is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		category, err := newJService(srv.URL, time.Second).Category(context.Background(), 7)

		require.ErrorIs(t, err, ErrFetchFailed)
		assert.Nil(t, category)
	})

	t.Run("Unreachable api is a fetch failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := newJService(url, time.Second).Category(context.Background(), 7)

		require.ErrorIs(t, err, ErrFetchFailed)
	})
}
