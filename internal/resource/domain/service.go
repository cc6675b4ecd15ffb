package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/tally/pkg/db/pagination"
)

type CreateResourceRequest struct {
	ExternalID     int64
	SubscriptionID string
	IsPrePaid      *bool
	IsProrated     *bool
}

type UpdateResourceRequest struct {
	ID             string
	ExternalID     *int64
	SubscriptionID *string
	IsPrePaid      *bool
	IsProrated     *bool
}

type GetResourceRequest struct {
	ID string
}

type ListResourceRequest struct {
	PageToken      string
	PageSize       int
	SubscriptionID string
}

type ListResourceFilter struct {
	SubscriptionID string
}

type ListResourceResponse struct {
	pagination.PageInfo
	Resources []Resource `json:"resources"`
}

// DaysActiveRequest queries active days within [From, To]. A nil To defaults
// to the current instant.
type DaysActiveRequest struct {
	ID   string
	From time.Time
	To   *time.Time
}

type DaysActiveResponse struct {
	ResourceID string    `json:"resource_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	DaysActive int       `json:"days_active"`
}

type Service interface {
	Create(context.Context, CreateResourceRequest) (Resource, error)
	GetByID(context.Context, GetResourceRequest) (Resource, error)
	List(context.Context, ListResourceRequest) (ListResourceResponse, error)
	Update(context.Context, UpdateResourceRequest) (Resource, error)
	Activate(context.Context, string) (Resource, error)
	Deactivate(context.Context, string) (Resource, error)
	DaysActive(context.Context, DaysActiveRequest) (DaysActiveResponse, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidSubscription = errors.New("invalid_subscription_id")
	ErrInvalidExternalID   = errors.New("invalid_external_id")
	ErrInvalidInstant      = errors.New("invalid_instant")
	ErrNotFound            = errors.New("not_found")
	ErrAlreadyExists       = errors.New("already_exists")
	ErrResourceBusy        = errors.New("resource_busy")
)
