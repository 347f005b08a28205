package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/spotlane/pricing/internal/clock"
	"github.com/spotlane/pricing/internal/config"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	parkingrepository "github.com/spotlane/pricing/internal/parking/repository"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	pricingrepository "github.com/spotlane/pricing/internal/pricing/repository"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
	suggestionrepository "github.com/spotlane/pricing/internal/suggestion/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     suggestiondomain.Service
	parking *parkingdomain.Parking
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&parkingdomain.Parking{},
		&pricingdomain.PriceQuote{},
		&suggestiondomain.PriceSuggestion{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	pricingCfg := config.DefaultPricingConfig()
	pricingCfg.Suggestion = config.SuggestionTuning{
		LookbackDays:       10,
		TargetQuotesPerDay: 2,
		MaxIncreasePercent: 25,
		MaxDecreasePercent: 15,
		ValidityDays:       7,
	}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fakeClock,
		Pricing:     config.NewStaticPricingConfigHolder(pricingCfg),
		Repo:        suggestionrepository.Provide(),
		QuoteRepo:   pricingrepository.Provide(),
		ParkingRepo: parkingrepository.Provide(),
	})

	parking := &parkingdomain.Parking{
		ID:             node.Generate(),
		Slug:           "central-garage",
		Title:          "Central Garage",
		Timezone:       "UTC",
		BasePriceCents: 1000,
		Currency:       "EUR",
		IsActive:       true,
	}
	require.NoError(t, db.Create(parking).Error)

	return &testEnv{db: db, node: node, clock: fakeClock, svc: svc, parking: parking}
}

func (e *testEnv) seedQuotes(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		quote := pricingdomain.PriceQuote{
			ID:            fmt.Sprintf("quote-%d", i),
			ParkingID:     e.parking.ID,
			DurationHours: 2,
			TotalCents:    2000,
			Currency:      "EUR",
			CreatedAt:     e.clock.Now().AddDate(0, 0, -(i % 10)),
		}
		require.NoError(t, e.db.Create(&quote).Error)
	}
}

func TestGenerate_HighDemandRaisesPriceWithinCap(t *testing.T) {
	env := newTestEnv(t)

	// 60 quotes over 10 days is 6/day against a target of 2, so the raw
	// adjustment (+100%) hits the 25% cap.
	env.seedQuotes(t, 60)

	resp, err := env.svc.Generate(context.Background(), suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, suggestiondomain.AlgorithmBase, resp.AlgorithmType)
	assert.Equal(t, int64(1000), resp.CurrentPriceCents)
	assert.Equal(t, int64(1250), resp.SuggestedPriceCents)
	assert.Equal(t, 25.0, resp.Factors.AdjustmentPercent)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.False(t, resp.IsApplied)
}

func TestGenerate_LowDemandLowersPriceWithinCap(t *testing.T) {
	env := newTestEnv(t)

	// No quotes at all: raw adjustment (-50%) hits the 15% floor.
	resp, err := env.svc.Generate(context.Background(), suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(850), resp.SuggestedPriceCents)
	assert.Equal(t, -15.0, resp.Factors.AdjustmentPercent)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestGenerate_BalancedDemandKeepsPrice(t *testing.T) {
	env := newTestEnv(t)

	// 20 quotes over 10 days matches the 2/day target exactly.
	env.seedQuotes(t, 20)

	resp, err := env.svc.Generate(context.Background(), suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), resp.SuggestedPriceCents)
	assert.Equal(t, 0.0, resp.Factors.AdjustmentPercent)
}

func TestApply_UpdatesParkingBasePrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedQuotes(t, 60)

	generated, err := env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	applied, err := env.svc.Apply(ctx, generated.ID)
	require.NoError(t, err)
	assert.True(t, applied.IsApplied)
	require.NotNil(t, applied.AppliedAt)

	var parking parkingdomain.Parking
	require.NoError(t, env.db.First(&parking, "id = ?", env.parking.ID).Error)
	assert.Equal(t, int64(1250), parking.BasePriceCents)

	_, err = env.svc.Apply(ctx, generated.ID)
	assert.ErrorIs(t, err, suggestiondomain.ErrAlreadyApplied)
}

func TestApply_ExpiredSuggestionRefused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	generated, err := env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	env.clock.Set(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	_, err = env.svc.Apply(ctx, generated.ID)
	assert.ErrorIs(t, err, suggestiondomain.ErrExpired)
}

func TestList_CurrentOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	// First suggestion expires, a fresh one replaces it.
	env.clock.Advance(8 * 24 * time.Hour)
	second, err := env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)

	all, err := env.svc.List(ctx, suggestiondomain.ListRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	current, err := env.svc.List(ctx, suggestiondomain.ListRequest{
		ParkingID:   env.parking.ID.String(),
		CurrentOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, second.ID, current[0].ID)
	assert.NotEqual(t, first.ID, current[0].ID)
}

func TestList_NoParkingFilterListsAcrossParkings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &parkingdomain.Parking{
		ID:             env.node.Generate(),
		Slug:           "airport-lot",
		Title:          "Airport Lot",
		Timezone:       "UTC",
		BasePriceCents: 2000,
		Currency:       "EUR",
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(other).Error)

	_, err := env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: env.parking.ID.String(),
	})
	require.NoError(t, err)
	_, err = env.svc.Generate(ctx, suggestiondomain.GenerateRequest{
		ParkingID: other.ID.String(),
	})
	require.NoError(t, err)

	all, err := env.svc.List(ctx, suggestiondomain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.svc.List(ctx, suggestiondomain.ListRequest{ParkingID: "not-a-number"})
	assert.ErrorIs(t, err, suggestiondomain.ErrInvalidParking)
}

func TestRefreshAll_SkipsInactiveParkings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	inactive := &parkingdomain.Parking{
		ID:             env.node.Generate(),
		Slug:           "closed-lot",
		Title:          "Closed Lot",
		Timezone:       "UTC",
		BasePriceCents: 500,
		Currency:       "EUR",
		IsActive:       false,
	}
	require.NoError(t, env.db.Create(inactive).Error)

	refreshed, err := env.svc.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)

	var count int64
	require.NoError(t, env.db.Model(&suggestiondomain.PriceSuggestion{}).
		Where("parking_id = ?", inactive.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
