package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository is the property store boundary: reads hydrate the full field
// set, Save writes it back wholesale (including both timestamp histories).
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, resource *Resource) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Resource, error)
	List(ctx context.Context, db *gorm.DB, filter ListResourceFilter, page pagination.Pagination) ([]*Resource, error)
	Save(ctx context.Context, db *gorm.DB, resource *Resource) error
}
