// Package domain holds the billable resource aggregate: its persistence
// model, the activation ledger, and the days-active accounting over it.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Resource is a billable capability tied to a subscription. Its activation
// and deactivation histories are stored as UTC epoch seconds in insertion
// order; ordering is not guaranteed beyond that.
type Resource struct {
	ID                     snowflake.ID               `gorm:"primaryKey" json:"id"`
	ExternalID             int64                      `gorm:"not null;default:0;index" json:"external_id"`
	SubscriptionID         snowflake.ID               `gorm:"not null;default:0;index" json:"subscription_id"`
	IsPrePaid              bool                       `gorm:"not null;default:true" json:"is_pre_paid"`
	IsProrated             bool                       `gorm:"not null;default:false" json:"is_prorated"`
	ActivationTimestamps   datatypes.JSONSlice[int64] `gorm:"not null;default:'[]'" json:"activation_timestamps"`
	DeactivationTimestamps datatypes.JSONSlice[int64] `gorm:"not null;default:'[]'" json:"deactivation_timestamps"`
	CreatedAt              time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt              time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Resource) TableName() string { return "resources" }

// Activate appends the given instant to the activation history. The change
// is in-memory only; persisting it is the caller's responsibility.
func (r *Resource) Activate(at time.Time) {
	r.ActivationTimestamps = append(r.ActivationTimestamps, at.UTC().Unix())
}

// Deactivate appends the given instant to the deactivation history.
func (r *Resource) Deactivate(at time.Time) {
	r.DeactivationTimestamps = append(r.DeactivationTimestamps, at.UTC().Unix())
}

// HasBeenActivated reports whether the resource was ever activated.
func (r *Resource) HasBeenActivated() bool {
	return len(r.ActivationTimestamps) > 0
}

func (r *Resource) Activations() []int64 {
	return r.ActivationTimestamps
}

func (r *Resource) Deactivations() []int64 {
	return r.DeactivationTimestamps
}

// SetActivations replaces the activation history wholesale, e.g. when
// hydrating from storage. No ordering validation is performed.
func (r *Resource) SetActivations(ts []int64) {
	r.ActivationTimestamps = datatypes.NewJSONSlice(ts)
}

// SetDeactivations replaces the deactivation history wholesale.
func (r *Resource) SetDeactivations(ts []int64) {
	r.DeactivationTimestamps = datatypes.NewJSONSlice(ts)
}
