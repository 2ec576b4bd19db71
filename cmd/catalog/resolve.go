package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Sternrassler/movie-catalog-client/pkg/catalog"
	"github.com/Sternrassler/movie-catalog-client/pkg/filter"
	"github.com/Sternrassler/movie-catalog-client/pkg/lookup"
)

// personCandidates bounds the server-side person search used to resolve a name.
const personCandidates = 50

type labeled struct {
	id    int
	label string
}

func labels[T lookup.Labeled](items []T) []labeled {
	out := make([]labeled, 0, len(items))
	for _, item := range items {
		out = append(out, labeled{id: item.RefID(), label: item.Label()})
	}
	return out
}

// resolveIDs turns flag values into ids. Numeric values are ids; any other
// value is matched against the dimension's labels and the closest match wins.
func (a *app) resolveIDs(ctx context.Context, dim filter.Dimension, values []string) ([]int, error) {
	ids := make([]int, 0, len(values))
	var options []labeled

	for _, raw := range values {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if id, err := strconv.Atoi(v); err == nil {
			ids = append(ids, id)
			continue
		}

		var err error
		if dim == filter.Person {
			// Persons are too many to list; narrow by server search first.
			options, err = a.personOptions(ctx, v)
		} else if options == nil {
			options, err = a.facetOptions(ctx, dim)
		}
		if err != nil {
			return nil, err
		}

		id, ok := bestMatch(v, options)
		if !ok {
			return nil, fmt.Errorf("no %s matches %q", dim, v)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (a *app) facetOptions(ctx context.Context, dim filter.Dimension) ([]labeled, error) {
	switch dim {
	case filter.Genre:
		page, err := a.catalog.Genres(ctx, "", 1, catalog.FacetsSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load genres: %w", err)
		}
		return labels(page.Items), nil
	case filter.Country:
		page, err := a.catalog.Countries(ctx, "", 1, catalog.FacetsSize)
		if err != nil {
			return nil, fmt.Errorf("failed to load countries: %w", err)
		}
		return labels(page.Items), nil
	default:
		return nil, fmt.Errorf("no name lookup for %s", dim)
	}
}

func (a *app) personOptions(ctx context.Context, name string) ([]labeled, error) {
	page, err := a.catalog.Persons(ctx, name, 1, personCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to search persons: %w", err)
	}
	return labels(page.Items), nil
}

// bestMatch ranks options by fuzzy distance to name, ignoring case and
// diacritics. An exact label match always wins.
func bestMatch(name string, options []labeled) (int, bool) {
	targets := make([]string, len(options))
	for i, o := range options {
		if strings.EqualFold(o.label, name) {
			return o.id, true
		}
		targets[i] = o.label
	}

	ranks := fuzzy.RankFindNormalizedFold(name, targets)
	if len(ranks) == 0 {
		return 0, false
	}
	sort.Sort(ranks)
	return options[ranks[0].OriginalIndex].id, true
}
