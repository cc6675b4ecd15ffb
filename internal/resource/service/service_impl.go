package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tally/internal/clock"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/lock"
	"github.com/smallbiznis/tally/internal/observability"
	"github.com/smallbiznis/tally/internal/resource/domain"
	"github.com/smallbiznis/tally/pkg/db"
	"github.com/smallbiznis/tally/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	eventActivation   = "activation"
	eventDeactivation = "deactivation"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Clock    clock.Clock
	Locker   *lock.Locker
	Defaults *config.ResourceDefaultsHolder
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	clock    clock.Clock
	locker   *lock.Locker
	defaults *config.ResourceDefaultsHolder
	metrics  *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("resource.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		clock:    p.Clock,
		locker:   p.Locker,
		defaults: p.Defaults,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateResourceRequest) (domain.Resource, error) {
	if req.ExternalID < 0 {
		return domain.Resource{}, domain.ErrInvalidExternalID
	}

	var subscriptionID snowflake.ID
	if raw := strings.TrimSpace(req.SubscriptionID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.Resource{}, domain.ErrInvalidSubscription
		}
		subscriptionID = parsed
	}

	defaults := s.defaults.Get()
	isPrePaid := defaults.PrePaid
	if req.IsPrePaid != nil {
		isPrePaid = *req.IsPrePaid
	}
	isProrated := defaults.Prorated
	if req.IsProrated != nil {
		isProrated = *req.IsProrated
	}

	now := s.clock.Now()
	resource := domain.Resource{
		ID:                     s.genID.Generate(),
		ExternalID:             req.ExternalID,
		SubscriptionID:         subscriptionID,
		IsPrePaid:              isPrePaid,
		IsProrated:             isProrated,
		ActivationTimestamps:   datatypes.NewJSONSlice([]int64{}),
		DeactivationTimestamps: datatypes.NewJSONSlice([]int64{}),
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.repo.Insert(ctx, s.db, &resource); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Resource{}, domain.ErrAlreadyExists
		}
		return domain.Resource{}, err
	}

	return resource, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetResourceRequest) (domain.Resource, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Resource{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Resource{}, err
	}
	if item == nil {
		return domain.Resource{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListResourceRequest) (domain.ListResourceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListResourceFilter{
		SubscriptionID: strings.TrimSpace(req.SubscriptionID),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListResourceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(resource *domain.Resource) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        resource.ID.String(),
			CreatedAt: resource.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	resources := make([]domain.Resource, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		resources = append(resources, *item)
	}

	resp := domain.ListResourceResponse{Resources: resources}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateResourceRequest) (domain.Resource, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Resource{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Resource{}, err
	}
	if item == nil {
		return domain.Resource{}, domain.ErrNotFound
	}

	if req.ExternalID != nil {
		if *req.ExternalID < 0 {
			return domain.Resource{}, domain.ErrInvalidExternalID
		}
		item.ExternalID = *req.ExternalID
	}
	if req.SubscriptionID != nil {
		raw := strings.TrimSpace(*req.SubscriptionID)
		if raw == "" {
			item.SubscriptionID = 0
		} else {
			parsed, err := snowflake.ParseString(raw)
			if err != nil {
				return domain.Resource{}, domain.ErrInvalidSubscription
			}
			item.SubscriptionID = parsed
		}
	}
	if req.IsPrePaid != nil {
		item.IsPrePaid = *req.IsPrePaid
	}
	if req.IsProrated != nil {
		item.IsProrated = *req.IsProrated
	}
	item.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, item); err != nil {
		return domain.Resource{}, err
	}

	return *item, nil
}

func (s *Service) Activate(ctx context.Context, id string) (domain.Resource, error) {
	return s.appendEvent(ctx, id, eventActivation)
}

func (s *Service) Deactivate(ctx context.Context, id string) (domain.Resource, error) {
	return s.appendEvent(ctx, id, eventDeactivation)
}

// appendEvent performs the read-append-save cycle under the per-resource
// lock. The histories are whole-column values, so without the lock two
// concurrent mutations would overwrite each other's appended event.
func (s *Service) appendEvent(ctx context.Context, id, event string) (domain.Resource, error) {
	rid, err := s.parseID(id)
	if err != nil {
		return domain.Resource{}, err
	}

	key := "tally:resource:" + rid.String()
	token, err := s.locker.Acquire(ctx, key, s.defaults.Get().LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return domain.Resource{}, domain.ErrResourceBusy
		}
		return domain.Resource{}, err
	}
	defer func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			s.log.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}()

	var item *domain.Resource
	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindByID(ctx, tx, rid)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}

		switch event {
		case eventActivation:
			item.Activate(now)
		case eventDeactivation:
			item.Deactivate(now)
		}
		item.UpdatedAt = now

		return s.repo.Save(ctx, tx, item)
	})
	if err != nil {
		return domain.Resource{}, err
	}

	s.metrics.RecordLedgerEvent(ctx, event)
	s.log.Debug("ledger event recorded",
		zap.String("resource_id", rid.String()),
		zap.String("event", event),
		zap.Time("at", now),
	)

	return *item, nil
}

func (s *Service) DaysActive(ctx context.Context, req domain.DaysActiveRequest) (domain.DaysActiveResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.DaysActiveResponse{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.DaysActiveResponse{}, err
	}
	if item == nil {
		return domain.DaysActiveResponse{}, domain.ErrNotFound
	}

	to := s.clock.Now()
	if req.To != nil {
		to = req.To.UTC()
	}
	from := req.From.UTC()

	days := domain.DaysActive(item, from, to)
	s.metrics.RecordUsageQuery(ctx)

	return domain.DaysActiveResponse{
		ResourceID: id.String(),
		From:       from,
		To:         to,
		DaysActive: days,
	}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
