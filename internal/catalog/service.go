package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/HerbHall/wakdex/internal/apperr"
	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/locale"
	"github.com/HerbHall/wakdex/internal/paging"
)

// Page is one mapped page of a resource.
type Page[D any] struct {
	Data  []D
	Opts  paging.Options
	Total int
}

// Service runs the read pipeline for one resource.
type Service[F, D any] struct {
	res  Resource[F, D]
	exec *docstore.Executor
}

// NewService creates a Service for res backed by exec.
func NewService[F, D any](res Resource[F, D], exec *docstore.Executor) *Service[F, D] {
	return &Service[F, D]{res: res, exec: exec}
}

// Resource returns the resource the service reads.
func (s *Service[F, D]) Resource() Resource[F, D] { return s.res }

// Find validates the request and returns one page. All validation happens
// before the store is touched.
func (s *Service[F, D]) Find(ctx context.Context, rawLocale string, q url.Values) (Page[D], error) {
	l, err := locale.Resolve(rawLocale)
	if err != nil {
		return Page[D]{}, err
	}
	filter, err := s.res.ParseFilter(q)
	if err != nil {
		return Page[D]{}, err
	}
	opts, err := paging.Build(paging.RawFromQuery(q), s.res.Whitelist())
	if err != nil {
		return Page[D]{}, err
	}

	result, err := s.exec.Run(ctx, s.res.Name(), s.res.Translate(filter, l, opts))
	if err != nil {
		return Page[D]{}, err
	}

	data := make([]D, 0, len(result.Docs))
	for _, doc := range result.Docs {
		d, err := s.res.Map(doc, l)
		if err != nil {
			return Page[D]{}, apperr.Wrap(apperr.KindUnhandled, fmt.Errorf("map %s document: %w", s.res.Name(), err))
		}
		data = append(data, d)
	}
	return Page[D]{Data: data, Opts: opts, Total: result.Total}, nil
}

// FindOne returns the record whose identifier is rawID.
func (s *Service[F, D]) FindOne(ctx context.Context, rawLocale, rawID string) (D, error) {
	var zero D

	l, err := locale.Resolve(rawLocale)
	if err != nil {
		return zero, err
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 {
		return zero, apperr.InvalidFilter("id must be a positive integer")
	}

	doc, err := s.exec.One(ctx, s.res.Name(), s.res.Lookup(id, l))
	if errors.Is(err, docstore.ErrNotFound) {
		return zero, apperr.NotFound(fmt.Sprintf("%s %d not found", s.res.Name(), id))
	}
	if err != nil {
		return zero, err
	}

	d, err := s.res.Map(doc, l)
	if err != nil {
		return zero, apperr.Wrap(apperr.KindUnhandled, fmt.Errorf("map %s document: %w", s.res.Name(), err))
	}
	return d, nil
}
