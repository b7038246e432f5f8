package library

import (
	"context"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

type expectedVersionKey struct{}

// ExpectVersion makes the next lifecycle change on ctx fail with a
// domain.VersionConflictError unless the item is at version v.
// An empty v sets no precondition.
func ExpectVersion(ctx context.Context, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, expectedVersionKey{}, v)
}

func checkVersion(ctx context.Context, meta versioning.Metadata) error {
	want, ok := ctx.Value(expectedVersionKey{}).(string)
	if !ok {
		return nil
	}
	if cur := meta.Version.String(); cur != want {
		return domain.NewVersionConflict(cur)
	}
	return nil
}
