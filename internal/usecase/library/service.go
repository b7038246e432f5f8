// Package library runs the lifecycle and query operations shared by every
// versioned library item kind.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/page"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
	"github.com/kailas-cloud/mdrcore/internal/logger"
	"github.com/kailas-cloud/mdrcore/internal/metrics"
)

// Scope restricts an operation to a subset of items, e.g. one study.
// A nil Scope matches everything.
type Scope[T any] func(item T) bool

func (s Scope[T]) match(item T) bool { return s == nil || s(item) }

// Service handles versioned items of one kind.
type Service[T Entity[T]] struct {
	kind            string
	uidField        string
	repo            Repository[T]
	uids            UIDGenerator
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
	concurrency     int
}

// New creates a library service. uidField is the record field holding the uid.
func New[T Entity[T]](kind, uidField string, repo Repository[T], uids UIDGenerator) *Service[T] {
	return &Service[T]{
		kind:            kind,
		uidField:        uidField,
		repo:            repo,
		uids:            uids,
		now:             time.Now,
		defaultPageSize: 10,
		maxPageSize:     1000,
		concurrency:     8,
	}
}

// WithPagination configures page size limits.
func (s *Service[T]) WithPagination(defaultPageSize, maxPageSize int) *Service[T] {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithClock replaces the wall clock.
func (s *Service[T]) WithClock(now func() time.Time) *Service[T] {
	if now != nil {
		s.now = now
	}
	return s
}

// WithConcurrency bounds parallel history loads in AuditTrail.
func (s *Service[T]) WithConcurrency(n int) *Service[T] {
	if n > 0 {
		s.concurrency = n
	}
	return s
}

// Kind returns the item kind name.
func (s *Service[T]) Kind() string { return s.kind }

// DefaultPageSize is used when a caller gives no page size.
func (s *Service[T]) DefaultPageSize() int { return s.defaultPageSize }

// Create stores item as a new Draft 0.1 with a fresh uid.
func (s *Service[T]) Create(ctx context.Context, item T, author, description string) (created T, err error) {
	defer s.observe("create", time.Now(), &err)

	uid, err := s.uids.Next(ctx)
	if err != nil {
		return created, fmt.Errorf("generate uid: %w", err)
	}
	meta := versioning.Create(author, description, s.now().UTC())
	created = item.WithUID(uid).WithMeta(meta)
	if err := s.repo.Save(ctx, history.NewSnapshot(uid, meta.StartDate, created)); err != nil {
		return created, fmt.Errorf("save: %w", err)
	}

	logger.FromContext(ctx).Info("Item created",
		zap.String("kind", s.kind), zap.String("uid", uid), zap.String("author", author))
	return created, nil
}

// Get returns the current state of an item within scope.
func (s *Service[T]) Get(ctx context.Context, uid string, scope Scope[T]) (T, error) {
	item, err := s.repo.Get(ctx, uid)
	if err != nil {
		return item, fmt.Errorf("get %s: %w", s.kind, err)
	}
	if !scope.match(item) {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", s.kind, uid, domain.ErrNotFound)
	}
	return item, nil
}

// List runs req over the current state of all items in scope. An equality
// filter on the uid field with a single value is served by a direct lookup.
func (s *Service[T]) List(ctx context.Context, req query.Request, scope Scope[T]) (p page.Page[T], err error) {
	defer s.observe("list", time.Now(), &err)

	if req.PageSize > s.maxPageSize {
		req.PageSize = s.maxPageSize
	}

	items, err := s.candidates(ctx, &req, scope)
	if err != nil {
		return p, err
	}
	p, err = query.Run(items, req)
	if err != nil {
		return p, fmt.Errorf("query %s: %w", s.kind, err)
	}

	metrics.QueryItemsTotal.WithLabelValues(s.kind, "scanned").Add(float64(len(items)))
	metrics.QueryItemsTotal.WithLabelValues(s.kind, "returned").Add(float64(len(p.Items)))
	return p, nil
}

// candidates loads the items a query runs over, narrowing req when the uid
// condition was consumed by a direct lookup.
func (s *Service[T]) candidates(ctx context.Context, req *query.Request, scope Scope[T]) ([]T, error) {
	if req.Operator != filter.Or {
		if v, rest, ok := query.ExtractValue(req.Filters, s.uidField, true); ok {
			if uid, isStr := v.(string); isStr {
				req.Filters = rest
				item, err := s.Get(ctx, uid, scope)
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return []T{}, nil
					}
					return nil, err
				}
				return []T{item}, nil
			}
		}
	}
	return s.all(ctx, scope)
}

func (s *Service[T]) all(ctx context.Context, scope Scope[T]) ([]T, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	if scope == nil {
		return items, nil
	}
	return slices.DeleteFunc(items, func(it T) bool { return !scope(it) }), nil
}

// Headers returns distinct values of a field among items in scope.
func (s *Service[T]) Headers(ctx context.Context, req query.HeaderRequest, scope Scope[T]) (vals []any, err error) {
	defer s.observe("headers", time.Now(), &err)

	items, err := s.all(ctx, scope)
	if err != nil {
		return nil, err
	}
	vals, err = query.Distinct(items, req)
	if err != nil {
		return nil, fmt.Errorf("headers %s: %w", s.kind, err)
	}
	return vals, nil
}

// Edit applies a change to a Draft item and bumps its minor version.
func (s *Service[T]) Edit(
	ctx context.Context, uid string, scope Scope[T], author, description string, change func(T) (T, error),
) (T, error) {
	return s.transition(ctx, versioning.ActionEdit, uid, scope, func(cur T, now time.Time) (T, error) {
		meta, err := cur.Meta().EditDraft(author, description, now)
		if err != nil {
			return cur, err
		}
		next, err := change(cur)
		if err != nil {
			return cur, err
		}
		return next.WithMeta(meta), nil
	})
}

// Approve finalizes a Draft as the next major version.
func (s *Service[T]) Approve(ctx context.Context, uid string, scope Scope[T], author string) (T, error) {
	return s.transition(ctx, versioning.ActionApprove, uid, scope, func(cur T, now time.Time) (T, error) {
		meta, err := cur.Meta().Approve(author, now)
		return cur.WithMeta(meta), err
	})
}

// NewVersion opens a Final item for editing as a new Draft.
func (s *Service[T]) NewVersion(ctx context.Context, uid string, scope Scope[T], author, description string) (T, error) {
	return s.transition(ctx, versioning.ActionNewVersion, uid, scope, func(cur T, now time.Time) (T, error) {
		meta, err := cur.Meta().NewVersion(author, description, now)
		return cur.WithMeta(meta), err
	})
}

// Inactivate retires a Final item.
func (s *Service[T]) Inactivate(ctx context.Context, uid string, scope Scope[T], author string) (T, error) {
	return s.transition(ctx, versioning.ActionInactivate, uid, scope, func(cur T, now time.Time) (T, error) {
		meta, err := cur.Meta().Inactivate(author, now)
		return cur.WithMeta(meta), err
	})
}

// Reactivate brings a Retired item back to Final.
func (s *Service[T]) Reactivate(ctx context.Context, uid string, scope Scope[T], author string) (T, error) {
	return s.transition(ctx, versioning.ActionReactivate, uid, scope, func(cur T, now time.Time) (T, error) {
		meta, err := cur.Meta().Reactivate(author, now)
		return cur.WithMeta(meta), err
	})
}

func (s *Service[T]) transition(
	ctx context.Context, action, uid string, scope Scope[T], step func(cur T, now time.Time) (T, error),
) (next T, err error) {
	defer s.observe(action, time.Now(), &err)

	cur, err := s.Get(ctx, uid, scope)
	if err != nil {
		return next, err
	}
	if err := checkVersion(ctx, cur.Meta()); err != nil {
		return next, fmt.Errorf("%s %s %s: %w", action, s.kind, uid, err)
	}
	next, err = step(cur, s.now().UTC())
	if err != nil {
		return next, fmt.Errorf("%s %s %s: %w", action, s.kind, uid, err)
	}
	meta := next.Meta()
	if err := s.repo.Save(ctx, history.NewSnapshot(uid, meta.StartDate, next)); err != nil {
		return next, fmt.Errorf("save: %w", err)
	}

	logger.FromContext(ctx).Info("Item transitioned",
		zap.String("kind", s.kind),
		zap.String("uid", uid),
		zap.String("action", action),
		zap.String("status", meta.Status.String()),
		zap.String("version", meta.Version.String()),
	)
	return next, nil
}

// Delete removes a Draft that was never approved, with its history.
func (s *Service[T]) Delete(ctx context.Context, uid string, scope Scope[T]) (err error) {
	defer s.observe(versioning.ActionDelete, time.Now(), &err)

	cur, err := s.Get(ctx, uid, scope)
	if err != nil {
		return err
	}
	if err := checkVersion(ctx, cur.Meta()); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.kind, uid, err)
	}
	if !cur.Meta().Deletable() {
		return fmt.Errorf("%w: only drafts that were never approved can be deleted", domain.ErrInvalidTransition)
	}
	if err := s.repo.Delete(ctx, uid); err != nil {
		return fmt.Errorf("delete %s: %w", s.kind, err)
	}
	logger.FromContext(ctx).Info("Item deleted", zap.String("kind", s.kind), zap.String("uid", uid))
	return nil
}

// Versions returns every version of an item, newest first, each carrying
// the fields changed relative to the version after it.
func (s *Service[T]) Versions(ctx context.Context, uid string, scope Scope[T]) (v []history.VersionRecord[T], err error) {
	defer s.observe("versions", time.Now(), &err)

	if _, err := s.Get(ctx, uid, scope); err != nil {
		return nil, err
	}
	snaps, err := s.repo.History(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", s.kind, err)
	}
	return history.DiffEntity(closeSnapshots(snaps)), nil
}

// AuditTrail runs req over the version records of every item in scope.
func (s *Service[T]) AuditTrail(
	ctx context.Context, req query.Request, scope Scope[T],
) (p page.Page[history.VersionRecord[T]], err error) {
	defer s.observe("audit_trail", time.Now(), &err)

	if req.PageSize > s.maxPageSize {
		req.PageSize = s.maxPageSize
	}

	uids, err := s.repo.UIDs(ctx)
	if err != nil {
		return p, fmt.Errorf("list %s uids: %w", s.kind, err)
	}

	perItem := make([][]history.Snapshot[T], len(uids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, uid := range uids {
		g.Go(func() error {
			snaps, err := s.repo.History(gctx, uid)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("history %s: %w", uid, err)
			}
			if len(snaps) > 0 && scope.match(snaps[len(snaps)-1].Item) {
				perItem[i] = closeSnapshots(snaps)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p, err
	}

	var all []history.Snapshot[T]
	for _, snaps := range perItem {
		all = append(all, snaps...)
	}

	p, err = query.Run(history.DiffHistory(all), req, filter.WithIdentity(history.EventIdentity))
	if err != nil {
		return p, fmt.Errorf("query %s audit trail: %w", s.kind, err)
	}
	return p, nil
}

// closeSnapshots stamps every superseded snapshot with the start date of
// its successor as end date. snaps is ordered oldest first.
func closeSnapshots[T Entity[T]](snaps []history.Snapshot[T]) []history.Snapshot[T] {
	out := slices.Clone(snaps)
	for i := 0; i+1 < len(out); i++ {
		out[i].Item = out[i].Item.WithMeta(out[i].Item.Meta().Close(out[i+1].StartDate))
	}
	return out
}

func (s *Service[T]) observe(op string, start time.Time, errp *error) {
	status := "ok"
	if *errp != nil {
		status = "error"
	}
	metrics.LibraryOperationDuration.WithLabelValues(s.kind, op).Observe(time.Since(start).Seconds())
	metrics.LibraryOperationsTotal.WithLabelValues(s.kind, op, status).Inc()
}
