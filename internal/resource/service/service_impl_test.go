package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tally/internal/clock"
	"github.com/smallbiznis/tally/internal/config"
	"github.com/smallbiznis/tally/internal/lock"
	"github.com/smallbiznis/tally/internal/resource/domain"
	"github.com/smallbiznis/tally/internal/resource/repository"
	"github.com/smallbiznis/tally/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc   domain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Resource{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Repo:     repository.Provide(),
		Clock:    fake,
		Locker:   lock.NewLocker(nil),
		Defaults: config.NewStaticResourceDefaultsHolder(config.DefaultResourceDefaults()),
	})

	return &testEnv{svc: svc, clock: fake, node: node}
}

func boolPtr(v bool) *bool { return &v }

func TestService_CreateAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, domain.CreateResourceRequest{ExternalID: 42})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.True(t, created.IsPrePaid)
	assert.False(t, created.IsProrated)
	assert.Empty(t, created.Activations())
	assert.Empty(t, created.Deactivations())
	assert.WithinDuration(t, env.clock.Now(), created.CreatedAt, time.Second)

	got, err := env.svc.GetByID(ctx, domain.GetResourceRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, int64(42), got.ExternalID)
	assert.False(t, got.HasBeenActivated())
}

func TestService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	subscription := env.node.Generate()
	created, err := env.svc.Create(ctx, domain.CreateResourceRequest{
		SubscriptionID: subscription.String(),
		IsPrePaid:      boolPtr(false),
		IsProrated:     boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, subscription, created.SubscriptionID)
	assert.False(t, created.IsPrePaid)
	assert.True(t, created.IsProrated)

	_, err = env.svc.Create(ctx, domain.CreateResourceRequest{SubscriptionID: "not-a-snowflake"})
	assert.ErrorIs(t, err, domain.ErrInvalidSubscription)

	_, err = env.svc.Create(ctx, domain.CreateResourceRequest{ExternalID: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidExternalID)
}

func TestService_LedgerEventsPersist(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, domain.CreateResourceRequest{})
	require.NoError(t, err)

	env.clock.Advance(8 * time.Hour)
	activatedAt := env.clock.Now()

	updated, err := env.svc.Activate(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []int64{activatedAt.Unix()}, updated.Activations())
	assert.True(t, updated.HasBeenActivated())

	env.clock.Advance(30 * time.Hour)
	deactivatedAt := env.clock.Now()

	updated, err = env.svc.Deactivate(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []int64{deactivatedAt.Unix()}, updated.Deactivations())

	got, err := env.svc.GetByID(ctx, domain.GetResourceRequest{ID: created.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, []int64{activatedAt.Unix()}, got.Activations())
	assert.Equal(t, []int64{deactivatedAt.Unix()}, got.Deactivations())
}

func TestService_LedgerEventErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Activate(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = env.svc.Deactivate(ctx, env.node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DaysActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, domain.CreateResourceRequest{})
	require.NoError(t, err)

	env.clock.Set(time.Date(2026, time.January, 3, 8, 0, 0, 0, time.UTC))
	_, err = env.svc.Activate(ctx, created.ID.String())
	require.NoError(t, err)

	// With To unset the window closes at the current instant.
	env.clock.Set(time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC))
	resp, err := env.svc.DaysActive(ctx, domain.DaysActiveRequest{
		ID:   created.ID.String(),
		From: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), resp.ResourceID)
	assert.Equal(t, env.clock.Now(), resp.To)
	assert.Equal(t, 8, resp.DaysActive)

	to := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	resp, err = env.svc.DaysActive(ctx, domain.DaysActiveRequest{
		ID:   created.ID.String(),
		From: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   &to,
	})
	require.NoError(t, err)
	assert.Equal(t, to, resp.To)
	assert.Equal(t, 2, resp.DaysActive)

	_, err = env.svc.DaysActive(ctx, domain.DaysActiveRequest{
		ID:   env.node.Generate().String(),
		From: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	subscription := env.node.Generate().String()
	created, err := env.svc.Create(ctx, domain.CreateResourceRequest{
		ExternalID:     7,
		SubscriptionID: subscription,
	})
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	newExternal := int64(99)
	empty := ""
	updated, err := env.svc.Update(ctx, domain.UpdateResourceRequest{
		ID:             created.ID.String(),
		ExternalID:     &newExternal,
		SubscriptionID: &empty,
		IsProrated:     boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), updated.ExternalID)
	assert.Zero(t, updated.SubscriptionID)
	assert.True(t, updated.IsProrated)
	assert.WithinDuration(t, env.clock.Now(), updated.UpdatedAt, time.Second)

	negative := int64(-5)
	_, err = env.svc.Update(ctx, domain.UpdateResourceRequest{
		ID:         created.ID.String(),
		ExternalID: &negative,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidExternalID)
}

func TestService_ListPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	subscription := env.node.Generate()
	ids := make([]snowflake.ID, 0, 3)
	for i := 0; i < 3; i++ {
		created, err := env.svc.Create(ctx, domain.CreateResourceRequest{
			SubscriptionID: subscription.String(),
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
		env.clock.Advance(time.Minute)
	}

	resp, err := env.svc.List(ctx, domain.ListResourceRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, resp.Resources, 2)
	assert.True(t, resp.HasMore)
	require.NotEmpty(t, resp.NextPageToken)

	// Newest first.
	assert.Equal(t, ids[2], resp.Resources[0].ID)
	assert.Equal(t, ids[1], resp.Resources[1].ID)

	cursor, err := pagination.DecodeCursor(resp.NextPageToken)
	require.NoError(t, err)
	assert.Equal(t, ids[1].String(), cursor.ID)

	filtered, err := env.svc.List(ctx, domain.ListResourceRequest{
		SubscriptionID: env.node.Generate().String(),
	})
	require.NoError(t, err)
	assert.Empty(t, filtered.Resources)
	assert.False(t, filtered.HasMore)
}
