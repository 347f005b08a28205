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
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	pricerulerepository "github.com/spotlane/pricing/internal/pricerule/repository"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	pricingrepository "github.com/spotlane/pricing/internal/pricing/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	clock   *clock.FakeClock
	svc     pricingdomain.Service
	parking *parkingdomain.Parking
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&parkingdomain.Parking{},
		&priceruledomain.PriceRule{},
		&pricingdomain.PriceQuote{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	pricingCfg := config.DefaultPricingConfig()
	pricingCfg.TaxRates = map[string]float64{"EUR": 0.10}

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		Clock:       fakeClock,
		Pricing:     config.NewStaticPricingConfigHolder(pricingCfg),
		QuoteRepo:   pricingrepository.Provide(),
		RuleRepo:    pricerulerepository.Provide(),
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
		CreatedAt:      fakeClock.Now(),
		UpdatedAt:      fakeClock.Now(),
	}
	require.NoError(t, db.Create(parking).Error)

	return &testEnv{db: db, node: node, clock: fakeClock, svc: svc, parking: parking}
}

func (e *testEnv) addRule(t *testing.T, rule priceruledomain.PriceRule) {
	t.Helper()
	rule.ID = e.node.Generate()
	rule.ParkingID = e.parking.ID
	rule.IsActive = true
	require.NoError(t, e.db.Create(&rule).Error)
}

func TestCalculatePrice_BaseOnly(t *testing.T) {
	env := newTestEnv(t)

	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calc.DurationHours)
	assert.Equal(t, int64(1000), calc.BasePriceCents)
	assert.Equal(t, int64(3000), calc.SubtotalCents)
	assert.Equal(t, int64(300), calc.TaxCents)
	assert.Equal(t, int64(3300), calc.TotalCents)
	assert.Equal(t, "EUR", calc.Currency)
	assert.Empty(t, calc.AppliedRules)

	var count int64
	require.NoError(t, env.db.Model(&pricingdomain.PriceQuote{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCalculatePrice_WithDiscountRule(t *testing.T) {
	env := newTestEnv(t)
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "early bird",
		Type:            priceruledomain.RuleTypeTimeBased,
		AdjustmentType:  priceruledomain.AdjustmentPercentage,
		AdjustmentValue: -20,
		Conditions: priceruledomain.Conditions{
			Time: &priceruledomain.TimeCondition{StartTime: "06:00", EndTime: "11:00"},
		},
	})

	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, calc.AppliedRules, 1)
	assert.Equal(t, "early bird", calc.AppliedRules[0].Name)
	assert.Equal(t, int64(-600), calc.AppliedRules[0].AmountCents)
	assert.Equal(t, int64(2400), calc.SubtotalCents)
	assert.Equal(t, int64(240), calc.TaxCents)
	assert.Equal(t, int64(2640), calc.TotalCents)
}

func TestCalculatePrice_RulesOrderedByPriority(t *testing.T) {
	env := newTestEnv(t)
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "discount",
		AdjustmentType:  priceruledomain.AdjustmentPercentage,
		AdjustmentValue: -50,
		Priority:        2,
	})
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "surcharge",
		AdjustmentType:  priceruledomain.AdjustmentFixed,
		AdjustmentValue: 1000,
		Priority:        1,
	})

	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Surcharge (priority 1) applies before the percentage discount.
	require.Len(t, calc.AppliedRules, 2)
	assert.Equal(t, "surcharge", calc.AppliedRules[0].Name)
	assert.Equal(t, "discount", calc.AppliedRules[1].Name)
	assert.Equal(t, int64(1500), calc.SubtotalCents)
}

func TestCalculatePrice_EqualPriorityKeepsCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "airport surcharge",
		AdjustmentType:  priceruledomain.AdjustmentFixed,
		AdjustmentValue: 1000,
		Priority:        1,
	})
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "weekly deal",
		AdjustmentType:  priceruledomain.AdjustmentPercentage,
		AdjustmentValue: -50,
		Priority:        1,
	})

	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Same priority: the older rule applies first, so the discount sees
	// the surcharged subtotal. Reversed order would end at 2000.
	require.Len(t, calc.AppliedRules, 2)
	assert.Equal(t, "airport surcharge", calc.AppliedRules[0].Name)
	assert.Equal(t, "weekly deal", calc.AppliedRules[1].Name)
	assert.Equal(t, int64(1500), calc.SubtotalCents)
}

func TestCalculatePrice_InactiveRulesIgnored(t *testing.T) {
	env := newTestEnv(t)
	rule := priceruledomain.PriceRule{
		ID:              env.node.Generate(),
		ParkingID:       env.parking.ID,
		Name:            "disabled promo",
		AdjustmentType:  priceruledomain.AdjustmentPercentage,
		AdjustmentValue: -50,
		IsActive:        false,
	}
	require.NoError(t, env.db.Create(&rule).Error)

	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Empty(t, calc.AppliedRules)
	assert.Equal(t, int64(3000), calc.SubtotalCents)
}

func TestCalculatePrice_DayRuleEvaluatedInParkingTimezone(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Model(env.parking).Update("timezone", "America/New_York").Error)
	env.addRule(t, priceruledomain.PriceRule{
		Name:            "weekend surcharge",
		Type:            priceruledomain.RuleTypeDayBased,
		AdjustmentType:  priceruledomain.AdjustmentFixed,
		AdjustmentValue: 1500,
		Conditions: priceruledomain.Conditions{
			Day: &priceruledomain.DayCondition{DaysOfWeek: []int{0, 6}},
		},
	})

	// 2026-03-08 02:00 UTC is still Saturday evening in New York.
	calc, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 8, 2, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 8, 5, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, calc.AppliedRules, 1)
	assert.Equal(t, int64(4500), calc.SubtotalCents)
}

func TestCalculatePrice_InvalidInterval(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)

	_, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: start,
		EndDate:   start,
	})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidInterval)

	_, err = env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: start,
		EndDate:   start.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidInterval)
}

func TestCalculatePrice_ParkingNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CalculatePrice(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.node.Generate().String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, pricingdomain.ErrParkingNotFound)
}

func TestPriceForRange_DoesNotPersist(t *testing.T) {
	env := newTestEnv(t)

	calc, err := env.svc.PriceForRange(context.Background(), pricingdomain.CalculateRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3300), calc.TotalCents)

	var count int64
	require.NoError(t, env.db.Model(&pricingdomain.PriceQuote{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestHistorical_AggregatesByDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Two quotes yesterday, one today.
	yesterday := env.clock.Now().AddDate(0, 0, -1)
	for i, quote := range []pricingdomain.PriceQuote{
		{TotalCents: 3000, DurationHours: 3, CreatedAt: yesterday},
		{TotalCents: 5000, DurationHours: 5, CreatedAt: yesterday.Add(time.Hour)},
		{TotalCents: 2000, DurationHours: 2, CreatedAt: env.clock.Now()},
	} {
		quote.ID = fmt.Sprintf("quote-%d", i)
		quote.ParkingID = env.parking.ID
		quote.Currency = "EUR"
		require.NoError(t, env.db.Create(&quote).Error)
	}

	resp, err := env.svc.Historical(ctx, pricingdomain.HistoricalRequest{
		ParkingID: env.parking.ID.String(),
		Days:      7,
	})
	require.NoError(t, err)

	assert.Equal(t, "EUR", resp.Currency)
	require.Len(t, resp.Points, 2)

	first := resp.Points[0]
	assert.Equal(t, yesterday.Format("2006-01-02"), first.Date)
	assert.Equal(t, 2, first.QuoteCount)
	assert.Equal(t, int64(8000), first.RevenueCents)
	assert.Equal(t, int64(4000), first.AvgTotalCents)
	assert.Equal(t, int64(3000), first.MinTotalCents)
	assert.Equal(t, int64(5000), first.MaxTotalCents)
	assert.Equal(t, int64(1000), first.AvgHourlyCents)

	second := resp.Points[1]
	assert.Equal(t, env.clock.Now().Format("2006-01-02"), second.Date)
	assert.Equal(t, 1, second.QuoteCount)
	assert.Equal(t, int64(2000), second.RevenueCents)
}

func TestHistorical_ExplicitDateRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, created := range []time.Time{
		time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	} {
		quote := pricingdomain.PriceQuote{
			ID:            fmt.Sprintf("quote-%d", i),
			ParkingID:     env.parking.ID,
			TotalCents:    3000,
			DurationHours: 3,
			Currency:      "EUR",
			CreatedAt:     created,
		}
		require.NoError(t, env.db.Create(&quote).Error)
	}

	resp, err := env.svc.Historical(ctx, pricingdomain.HistoricalRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.Days)
	require.Len(t, resp.Points, 1)
	assert.Equal(t, "2026-02-27", resp.Points[0].Date)
	assert.Equal(t, int64(3000), resp.Points[0].RevenueCents)

	_, err = env.svc.Historical(ctx, pricingdomain.HistoricalRequest{
		ParkingID: env.parking.ID.String(),
		StartDate: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 2, 26, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidRange)
}

func TestHistorical_RangeTooWide(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Historical(context.Background(), pricingdomain.HistoricalRequest{
		ParkingID: env.parking.ID.String(),
		Days:      400,
	})
	assert.ErrorIs(t, err, pricingdomain.ErrInvalidRange)
}
