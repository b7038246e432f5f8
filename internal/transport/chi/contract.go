package chi

import (
	"context"

	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/page"
	healthuc "github.com/kailas-cloud/mdrcore/internal/usecase/health"
	libraryuc "github.com/kailas-cloud/mdrcore/internal/usecase/library"
)

// ItemService is the library usecase one resource is served from.
//
//nolint:interfacebloat // mirrors the lifecycle of a versioned item
type ItemService[T any] interface {
	Kind() string
	DefaultPageSize() int
	Create(ctx context.Context, item T, author, description string) (T, error)
	Get(ctx context.Context, uid string, scope libraryuc.Scope[T]) (T, error)
	List(ctx context.Context, req query.Request, scope libraryuc.Scope[T]) (page.Page[T], error)
	Headers(ctx context.Context, req query.HeaderRequest, scope libraryuc.Scope[T]) ([]any, error)
	Edit(ctx context.Context, uid string, scope libraryuc.Scope[T], author, description string,
		change func(T) (T, error)) (T, error)
	Approve(ctx context.Context, uid string, scope libraryuc.Scope[T], author string) (T, error)
	NewVersion(ctx context.Context, uid string, scope libraryuc.Scope[T], author, description string) (T, error)
	Inactivate(ctx context.Context, uid string, scope libraryuc.Scope[T], author string) (T, error)
	Reactivate(ctx context.Context, uid string, scope libraryuc.Scope[T], author string) (T, error)
	Delete(ctx context.Context, uid string, scope libraryuc.Scope[T]) error
	Versions(ctx context.Context, uid string, scope libraryuc.Scope[T]) ([]history.VersionRecord[T], error)
	AuditTrail(ctx context.Context, req query.Request,
		scope libraryuc.Scope[T]) (page.Page[history.VersionRecord[T]], error)
}

// HealthChecker reports the health of the service dependencies.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
