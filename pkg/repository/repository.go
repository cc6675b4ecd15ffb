package repository

import (
	"context"

	"github.com/smallbiznis/tally/pkg/db/option"
)

// Repository is a generic gorm-backed store shared by domain repositories.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
}
