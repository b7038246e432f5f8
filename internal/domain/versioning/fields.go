package versioning

import "github.com/kailas-cloud/mdrcore/internal/domain/record"

// Field names exposed by every versioned item.
const (
	FieldStartDate         = "start_date"
	FieldEndDate           = "end_date"
	FieldStatus            = "status"
	FieldVersion           = "version"
	FieldChangeDescription = "change_description"
	FieldAuthorUsername    = "author_username"
	FieldPossibleActions   = "possible_actions"
)

// Accessors returns the schema accessors for the metadata of T.
// possible_actions is excluded from wildcard search.
func Accessors[T any](meta func(T) Metadata) []record.Accessor[T] {
	return []record.Accessor[T]{
		record.Scalar(FieldStartDate, func(v T) any { return meta(v).StartDate }),
		record.Scalar(FieldEndDate, func(v T) any {
			if end := meta(v).EndDate; end != nil {
				return *end
			}
			return nil
		}),
		record.Scalar(FieldStatus, func(v T) any { return meta(v).Status }),
		record.Scalar(FieldVersion, func(v T) any { return meta(v).Version.String() }),
		record.Scalar(FieldChangeDescription, func(v T) any { return meta(v).ChangeDescription }),
		record.Scalar(FieldAuthorUsername, func(v T) any { return meta(v).AuthorUsername }),
		record.List(FieldPossibleActions, func(v T) any {
			return record.AsList(meta(v).PossibleActions())
		}).Hidden(),
	}
}
