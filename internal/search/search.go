package search

import (
	"blog-admin/internal/environment"
	"blog-admin/internal/models"
	"blog-admin/internal/utils"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	DefaultPageSize = 5
	MaxPageSize     = 100
)

var ErrEmptyTerm = errors.New("did not perform search because no search term was present")

type Payload struct {
	Term     string   `json:"term"`
	Pageable Pageable `json:"pageable"`
}

type PostSearchMatch struct {
	Href         string  `json:"href"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	MatchingText string  `json:"matchingText"`
	Similarity   float64 `json:"similarity"`
}

type Page[T any] struct {
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Content       []T      `json:"content"`
	Pageable      Pageable `json:"pageable"`
}

type Pageable struct {
	PageNumber int  `json:"pageNumber"`
	PageSize   int  `json:"pageSize"`
	Sort       Sort `json:"sort"`
}

type Sort struct {
	Orders []Order `json:"orders"`
}

type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

type Service struct {
	*environment.Env
}

// Search finds the posts whose title or markdown contains the term, ranks all of them by
// trigram similarity to the term (most similar first) and returns the requested page.
func (s *Service) Search(ctx context.Context, payload Payload) (Page[PostSearchMatch], error) {
	term := strings.TrimSpace(payload.Term)
	if len(term) == 0 {
		return Page[PostSearchMatch]{}, ErrEmptyTerm
	}

	pageable := payload.Pageable
	if pageable.PageSize <= 0 {
		pageable.PageSize = DefaultPageSize
	}
	pageable.PageSize = min(pageable.PageSize, MaxPageSize)
	if pageable.PageNumber < 0 {
		pageable.PageNumber = 0
	}
	pageable.Sort = Sort{Orders: []Order{{Property: "similarity", Direction: DESC}}}

	var posts []models.Post
	if err := s.FindPostsBySearchTermSimple(ctx, term, &posts); err != nil {
		return Page[PostSearchMatch]{}, fmt.Errorf("error reading post search matches: %w", err)
	}

	var matchCount int
	if err := s.CountPostsMatchesBySearchTermSimple(ctx, term, &matchCount); err != nil {
		return Page[PostSearchMatch]{}, fmt.Errorf("error counting post search matches: %w", err)
	}

	matches := make([]PostSearchMatch, 0, len(posts))
	for _, post := range posts {
		matches = append(matches, PostSearchMatch{
			Href:         "/posts/" + post.Slug,
			Slug:         post.Slug,
			Title:        post.Title,
			MatchingText: term,
			Similarity:   similarity(post, term),
		})
	}

	slices.SortStableFunc(matches, func(a, b PostSearchMatch) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		default:
			return strings.Compare(a.Slug, b.Slug)
		}
	})

	return Page[PostSearchMatch]{
		TotalElements: matchCount,
		TotalPages:    utils.CalculateTotalPages(matchCount, pageable.PageSize),
		Content:       pageOf(matches, pageable),
		Pageable:      pageable,
	}, nil
}

// similarity is the better of the title and the markdown similarity.
func similarity(post models.Post, term string) float64 {
	return max(
		TrigramSorensenDiceSimilarity(post.Title, term),
		TrigramSorensenDiceSimilarity(post.Markdown, term),
	)
}

// pageOf slices the requested page out of all; pages past the end are empty.
func pageOf[T any](all []T, pageable Pageable) []T {
	if pageable.PageSize <= 0 || pageable.PageNumber < 0 || pageable.PageNumber > len(all)/pageable.PageSize {
		return []T{}
	}
	start := pageable.PageNumber * pageable.PageSize
	if start >= len(all) {
		return []T{}
	}
	end := min(start+pageable.PageSize, len(all))
	return all[start:end]
}
