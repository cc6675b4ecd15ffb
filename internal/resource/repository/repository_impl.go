package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/resource/domain"
	"github.com/smallbiznis/tally/pkg/db/option"
	"github.com/smallbiznis/tally/pkg/db/pagination"
	"github.com/smallbiznis/tally/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) store(db *gorm.DB) repository.Repository[domain.Resource] {
	return repository.ProvideStore[domain.Resource](db)
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, resource *domain.Resource) error {
	return r.store(db).Create(ctx, resource)
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Resource, error) {
	return r.store(db).FindOne(ctx, &domain.Resource{ID: id})
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListResourceFilter, page pagination.Pagination) ([]*domain.Resource, error) {
	query := &domain.Resource{}
	if filter.SubscriptionID != "" {
		id, err := snowflake.ParseString(filter.SubscriptionID)
		if err != nil {
			return nil, domain.ErrInvalidSubscription
		}
		query.SubscriptionID = id
	}

	return r.store(db).Find(ctx, query,
		option.ApplyPagination(page),
		option.WithOrder("created_at desc, id desc"),
	)
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, resource *domain.Resource) error {
	return r.store(db).Save(ctx, resource)
}
