package service

import (
	"context"
	"crypto/rand"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/spotlane/pricing/internal/clock"
	"github.com/spotlane/pricing/internal/config"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"github.com/spotlane/pricing/internal/pricing/engine"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Pricing     *config.PricingConfigHolder
	QuoteRepo   pricingdomain.QuoteRepository
	RuleRepo    priceruledomain.Repository
	ParkingRepo parkingdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	pricing     *config.PricingConfigHolder
	quoteRepo   pricingdomain.QuoteRepository
	ruleRepo    priceruledomain.Repository
	parkingRepo parkingdomain.Repository
}

func New(p Params) pricingdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pricing.service"),
		clock:       p.Clock,
		pricing:     p.Pricing,
		quoteRepo:   p.QuoteRepo,
		ruleRepo:    p.RuleRepo,
		parkingRepo: p.ParkingRepo,
	}
}

func (s *Service) CalculatePrice(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.PriceCalculation, error) {
	calc, parking, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}

	quote := &pricingdomain.PriceQuote{
		ID:             ulid.MustNew(ulid.Timestamp(s.clock.Now()), rand.Reader).String(),
		ParkingID:      parking.ID,
		StartTime:      calc.StartTime,
		EndTime:        calc.EndTime,
		DurationHours:  calc.DurationHours,
		BasePriceCents: calc.BasePriceCents,
		SubtotalCents:  calc.SubtotalCents,
		TaxCents:       calc.TaxCents,
		TotalCents:     calc.TotalCents,
		Currency:       calc.Currency,
		AppliedRules:   calc.AppliedRules,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.quoteRepo.Insert(ctx, s.db, quote); err != nil {
		// The caller still gets their price; history is best effort.
		s.log.Warn("quote not persisted",
			zap.String("parking_id", parking.ID.String()),
			zap.Error(err),
		)
	}

	s.log.Info("price calculated",
		zap.String("parking_id", parking.ID.String()),
		zap.Int("duration_hours", calc.DurationHours),
		zap.Int("rules_applied", len(calc.AppliedRules)),
		zap.Int64("total_cents", calc.TotalCents),
	)

	return calc, nil
}

func (s *Service) PriceForRange(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.PriceCalculation, error) {
	calc, _, err := s.quote(ctx, req)
	return calc, err
}

// quote loads the parking and its active rules, then runs the engine.
func (s *Service) quote(ctx context.Context, req pricingdomain.CalculateRequest) (*pricingdomain.PriceCalculation, *parkingdomain.Parking, error) {
	parkingID, err := parseID(req.ParkingID)
	if err != nil {
		return nil, nil, pricingdomain.ErrInvalidParking
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || !req.EndDate.After(req.StartDate) {
		return nil, nil, pricingdomain.ErrInvalidInterval
	}

	parking, err := s.parkingRepo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, nil, err
	}
	if parking == nil {
		return nil, nil, pricingdomain.ErrParkingNotFound
	}
	if parking.BasePriceCents < 0 {
		return nil, nil, pricingdomain.ErrNegativeBasePrice
	}

	rules, err := s.ruleRepo.ListActiveByParking(ctx, s.db, parkingID)
	if err != nil {
		return nil, nil, err
	}

	booking := engine.Booking{
		LocalStart:    req.StartDate.In(parking.Location()),
		DurationHours: engine.DurationHours(req.StartDate, req.EndDate),
	}

	resolution := engine.Resolve(parking.BasePriceCents, rules, booking)
	taxRate := s.pricing.Get().TaxRateFor(parking.Currency)
	taxCents := engine.Tax(resolution.SubtotalCents, taxRate)

	calc := &pricingdomain.PriceCalculation{
		ParkingID:      parking.ID.String(),
		StartTime:      req.StartDate,
		EndTime:        req.EndDate,
		DurationHours:  booking.DurationHours,
		BasePriceCents: parking.BasePriceCents,
		AppliedRules:   resolution.AppliedRules,
		SubtotalCents:  resolution.SubtotalCents,
		TaxCents:       taxCents,
		TotalCents:     resolution.SubtotalCents + taxCents,
		Currency:       parking.Currency,
	}
	return calc, parking, nil
}

func (s *Service) Historical(ctx context.Context, req pricingdomain.HistoricalRequest) (*pricingdomain.HistoricalResponse, error) {
	parkingID, err := parseID(req.ParkingID)
	if err != nil {
		return nil, pricingdomain.ErrInvalidParking
	}
	var since, until time.Time
	days := req.Days
	switch {
	case !req.StartDate.IsZero() || !req.EndDate.IsZero():
		if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
			return nil, pricingdomain.ErrInvalidRange
		}
		since = req.StartDate
		// The end date is an inclusive calendar day.
		until = req.EndDate.AddDate(0, 0, 1)
		days = int(until.Sub(since).Hours() / 24)
	default:
		if days <= 0 {
			days = 30
		}
		since = s.clock.Now().AddDate(0, 0, -days)
	}
	if days > 365 {
		return nil, pricingdomain.ErrInvalidRange
	}

	parking, err := s.parkingRepo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, pricingdomain.ErrParkingNotFound
	}

	quotes, err := s.quoteRepo.ListByParkingSince(ctx, s.db, parkingID, since)
	if err != nil {
		return nil, err
	}

	return &pricingdomain.HistoricalResponse{
		ParkingID: parking.ID.String(),
		Currency:  parking.Currency,
		Days:      days,
		Points:    aggregateByDay(quotes, until, parking.Location()),
	}, nil
}

// aggregateByDay buckets quotes by local calendar day and summarises each
// bucket. Points come back in ascending date order.
func aggregateByDay(quotes []pricingdomain.PriceQuote, until time.Time, loc *time.Location) []pricingdomain.HistoricalPoint {
	type bucket struct {
		count       int
		totalSum    int64
		minTotal    int64
		maxTotal    int64
		hourlySum   int64
		hourlyCount int
		durationSum int
	}

	buckets := make(map[string]*bucket)
	for i := range quotes {
		q := &quotes[i]
		if !until.IsZero() && !q.CreatedAt.Before(until) {
			continue
		}
		day := q.CreatedAt.In(loc).Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{minTotal: q.TotalCents, maxTotal: q.TotalCents}
			buckets[day] = b
		}
		b.count++
		b.totalSum += q.TotalCents
		if q.TotalCents < b.minTotal {
			b.minTotal = q.TotalCents
		}
		if q.TotalCents > b.maxTotal {
			b.maxTotal = q.TotalCents
		}
		if q.DurationHours > 0 {
			b.hourlySum += q.TotalCents / int64(q.DurationHours)
			b.hourlyCount++
		}
		b.durationSum += q.DurationHours
	}

	points := make([]pricingdomain.HistoricalPoint, 0, len(buckets))
	for day, b := range buckets {
		point := pricingdomain.HistoricalPoint{
			Date:           day,
			QuoteCount:     b.count,
			RevenueCents:   b.totalSum,
			AvgTotalCents:  b.totalSum / int64(b.count),
			MinTotalCents:  b.minTotal,
			MaxTotalCents:  b.maxTotal,
			AvgDurationHrs: float64(b.durationSum) / float64(b.count),
		}
		if b.hourlyCount > 0 {
			point.AvgHourlyCents = b.hourlySum / int64(b.hourlyCount)
		}
		points = append(points, point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
