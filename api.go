/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TriviaSource is anything that can supply category ids and category details.
type TriviaSource interface {
	RandomCategoryIDs(ctx context.Context, count int) ([]int64, error)
	Category(ctx context.Context, id int64) (*RawCategory, error)
}

// RawCategory is a category as returned by the api, before sampling.
type RawCategory struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Clues []RawClue `json:"clues"`
}

// RawClue is a single api clue. A zero ID marks a clue that could not be decoded.
type RawClue struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type jservice struct {
	base    string
	client  *http.Client
	timeout time.Duration
}

func newJService(base string, timeout time.Duration) *jservice {
	return &jservice{
		base:    strings.TrimSuffix(base, "/"),
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (j *jservice) RandomCategoryIDs(ctx context.Context, count int) ([]int64, error) {
	var items []json.RawMessage

	err := j.getJSON(ctx, "/random", url.Values{"count": {strconv.Itoa(count)}}, &items)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var clue struct {
			CategoryID *int64 `json:"category_id"`
		}

		// Anything that does not decode, or lacks an id, is kept as a null entry.
		if json.Unmarshal(item, &clue) != nil || clue.CategoryID == nil {
			ids = append(ids, 0)
			continue
		}

		ids = append(ids, *clue.CategoryID)
	}

	return ids, nil
}

func (j *jservice) Category(ctx context.Context, id int64) (*RawCategory, error) {
	var doc struct {
		ID    int64             `json:"id"`
		Title string            `json:"title"`
		Clues []json.RawMessage `json:"clues"`
	}

	err := j.getJSON(ctx, "/category", url.Values{"id": {strconv.FormatInt(id, 10)}}, &doc)
	if err != nil {
		return nil, err
	}

	return decodeCategory(doc.ID, doc.Title, doc.Clues), nil
}

func decodeCategory(id int64, title string, clues []json.RawMessage) *RawCategory {
	category := &RawCategory{
		ID:    id,
		Title: title,
		Clues: make([]RawClue, 0, len(clues)),
	}

	for _, raw := range clues {
		var clue RawClue
		if err := json.Unmarshal(raw, &clue); err != nil {
			clue = RawClue{}
		}

		category.Clues = append(category.Clues, clue)
	}

	return category
}

func (j *jservice) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	u := j.base + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, u, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "jeopardy/"+releaseVersion)

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s: %s", ErrFetchFailed, u, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decoding response: %w", ErrFetchFailed, u, err)
	}

	return nil
}
