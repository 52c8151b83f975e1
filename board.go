/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
)

// Showing is what a clue's cell currently displays. It only ever moves forward.
type Showing int

const (
	Hidden Showing = iota
	Question
	Answer
)

func (s Showing) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Question:
		return "question"
	case Answer:
		return "answer"
	default:
		return fmt.Sprintf("Showing(%d)", int(s))
	}
}

func (s Showing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const placeholder = "?"

type Clue struct {
	ID       int64
	Question string
	Answer   string
	Showing  Showing
}

// advance moves the clue one step along hidden -> question -> answer,
// reporting whether anything changed.
func (c *Clue) advance() bool {
	switch c.Showing {
	case Hidden:
		c.Showing = Question
	case Question:
		c.Showing = Answer
	default:
		return false
	}

	return true
}

// Content is the text a cell displays for the clue's current state.
func (c *Clue) Content() string {
	switch c.Showing {
	case Question:
		return c.Question
	case Answer:
		return c.Answer
	default:
		return placeholder
	}
}

type Category struct {
	ID    int64
	Title string
	Clues []*Clue
}

// Board is one session's full set of categories. Every category carries the same
// number of clues, and clue ids are unique across the whole board.
type Board struct {
	Categories []*Category

	index map[int64]*Clue
}

func newBoard(categories []*Category) *Board {
	b := &Board{
		Categories: categories,
		index:      make(map[int64]*Clue),
	}

	for _, category := range categories {
		for _, clue := range category.Clues {
			b.index[clue.ID] = clue
		}
	}

	return b
}

// Reveal advances the clue with the given id. The returned bool is false
// when the clue was already showing its answer.
func (b *Board) Reveal(id int64) (*Clue, bool, error) {
	clue, ok := b.index[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", ErrClueNotFound, id)
	}

	return clue, clue.advance(), nil
}

// Size returns the number of categories and the number of clues in each.
func (b *Board) Size() (int, int) {
	if len(b.Categories) == 0 {
		return 0, 0
	}

	return len(b.Categories), len(b.Categories[0].Clues)
}

type boardBuilder struct {
	source         TriviaSource
	shuffle        shuffleFunc
	categories     int
	clues          int
	poolMultiplier int
}

func newBoardBuilder(cfg *Config, source TriviaSource) *boardBuilder {
	return &boardBuilder{
		source:         source,
		shuffle:        defaultShuffle,
		categories:     cfg.categories,
		clues:          cfg.clues,
		poolMultiplier: cfg.poolMultiplier,
	}
}

// build fetches a pool of category ids, then each chosen category in turn.
// Any failure aborts the whole board.
func (bb *boardBuilder) build(ctx context.Context) (*Board, error) {
	pool, err := bb.source.RandomCategoryIDs(ctx, bb.categories*bb.poolMultiplier)
	if err != nil {
		return nil, fmt.Errorf("fetching category pool: %w", err)
	}

	ids, err := selectCategoryIDs(bb.shuffle, pool, bb.categories)
	if err != nil {
		return nil, fmt.Errorf("choosing categories: %w", err)
	}

	used := make(map[int64]bool, bb.categories*bb.clues)
	categories := make([]*Category, 0, len(ids))

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		category, err := bb.buildCategory(ctx, id, used)
		if err != nil {
			return nil, fmt.Errorf("building category %d of %d (id %d): %w", i+1, len(ids), id, err)
		}

		categories = append(categories, category)
	}

	return newBoard(categories), nil
}

func (bb *boardBuilder) buildCategory(ctx context.Context, id int64, used map[int64]bool) (*Category, error) {
	raw, err := bb.source.Category(ctx, id)
	if err != nil {
		return nil, err
	}

	fresh := make([]RawClue, 0, len(raw.Clues))
	for _, c := range raw.Clues {
		if !used[c.ID] {
			fresh = append(fresh, c)
		}
	}

	clues, err := selectClues(bb.shuffle, fresh, bb.clues)
	if err != nil {
		return nil, err
	}

	for _, c := range clues {
		used[c.ID] = true
	}

	return &Category{
		ID:    id,
		Title: raw.Title,
		Clues: clues,
	}, nil
}
