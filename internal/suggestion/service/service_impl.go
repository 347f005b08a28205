package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/spotlane/pricing/internal/clock"
	"github.com/spotlane/pricing/internal/config"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"github.com/spotlane/pricing/internal/pricing/engine"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Pricing     *config.PricingConfigHolder
	Repo        suggestiondomain.Repository
	QuoteRepo   pricingdomain.QuoteRepository
	ParkingRepo parkingdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	pricing     *config.PricingConfigHolder
	repo        suggestiondomain.Repository
	quoteRepo   pricingdomain.QuoteRepository
	parkingRepo parkingdomain.Repository
}

func New(p Params) suggestiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("suggestion.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		pricing:     p.Pricing,
		repo:        p.Repo,
		quoteRepo:   p.QuoteRepo,
		parkingRepo: p.ParkingRepo,
	}
}

func (s *Service) Generate(ctx context.Context, req suggestiondomain.GenerateRequest) (*suggestiondomain.Response, error) {
	parkingID, err := parseID(req.ParkingID)
	if err != nil {
		return nil, suggestiondomain.ErrInvalidParking
	}

	parking, err := s.parkingRepo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, suggestiondomain.ErrParkingNotFound
	}

	entity, err := s.generateFor(ctx, parking)
	if err != nil {
		return nil, err
	}
	return toResponse(entity), nil
}

// generateFor runs the demand heuristic: quote volume over the lookback
// window against the configured target, translated into a bounded price
// move.
func (s *Service) generateFor(ctx context.Context, parking *parkingdomain.Parking) (*suggestiondomain.PriceSuggestion, error) {
	tuning := s.pricing.Get().Suggestion
	now := s.clock.Now()
	since := now.AddDate(0, 0, -tuning.LookbackDays)

	quotes, err := s.quoteRepo.ListByParkingSince(ctx, s.db, parking.ID, since)
	if err != nil {
		return nil, err
	}

	quotesPerDay := float64(len(quotes)) / float64(tuning.LookbackDays)
	demandRatio := 1.0
	if tuning.TargetQuotesPerDay > 0 {
		demandRatio = quotesPerDay / tuning.TargetQuotesPerDay
	}

	// Half the demand deviation becomes a price move, bounded both ways.
	adjustment := (demandRatio - 1) * 50
	if adjustment > tuning.MaxIncreasePercent {
		adjustment = tuning.MaxIncreasePercent
	}
	if adjustment < -tuning.MaxDecreasePercent {
		adjustment = -tuning.MaxDecreasePercent
	}

	suggested := engine.RoundHalfAwayFromZero(float64(parking.BasePriceCents) * (1 + adjustment/100))
	if suggested < 0 {
		suggested = 0
	}

	// Confidence grows with sample size and saturates at the target volume.
	confidence := 0.0
	if expected := tuning.TargetQuotesPerDay * float64(tuning.LookbackDays); expected > 0 {
		confidence = float64(len(quotes)) / expected
		if confidence > 1 {
			confidence = 1
		}
	}

	entity := &suggestiondomain.PriceSuggestion{
		ID:                  s.genID.Generate(),
		ParkingID:           parking.ID,
		AlgorithmType:       suggestiondomain.AlgorithmBase,
		SuggestedPriceCents: suggested,
		CurrentPriceCents:   parking.BasePriceCents,
		Confidence:          confidence,
		Factors: suggestiondomain.Factors{
			LookbackDays:       tuning.LookbackDays,
			QuoteCount:         len(quotes),
			QuotesPerDay:       quotesPerDay,
			TargetQuotesPerDay: tuning.TargetQuotesPerDay,
			DemandRatio:        demandRatio,
			AdjustmentPercent:  adjustment,
		},
		Reasoning: fmt.Sprintf(
			"%d quotes over %d days (%.1f/day vs target %.1f/day), adjusting base price by %+.1f%%",
			len(quotes), tuning.LookbackDays, quotesPerDay, tuning.TargetQuotesPerDay, adjustment,
		),
		ValidFrom:  now,
		ValidUntil: now.AddDate(0, 0, tuning.ValidityDays),
		CreatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("price suggestion generated",
		zap.String("parking_id", parking.ID.String()),
		zap.Int64("current_cents", parking.BasePriceCents),
		zap.Int64("suggested_cents", suggested),
		zap.Float64("confidence", confidence),
	)
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*suggestiondomain.Response, error) {
	suggestionID, err := parseID(id)
	if err != nil {
		return nil, suggestiondomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, suggestionID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, suggestiondomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, req suggestiondomain.ListRequest) ([]suggestiondomain.Response, error) {
	var parkingID snowflake.ID
	if trimmed := strings.TrimSpace(req.ParkingID); trimmed != "" {
		parsed, err := parseID(trimmed)
		if err != nil {
			return nil, suggestiondomain.ErrInvalidParking
		}
		parkingID = parsed
	}

	items, err := s.repo.ListByParking(ctx, s.db, parkingID, req.CurrentOnly, s.clock.Now())
	if err != nil {
		return nil, err
	}

	resp := make([]suggestiondomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Apply(ctx context.Context, id string) (*suggestiondomain.Response, error) {
	suggestionID, err := parseID(id)
	if err != nil {
		return nil, suggestiondomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, suggestionID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, suggestiondomain.ErrNotFound
	}
	if entity.IsApplied {
		return nil, suggestiondomain.ErrAlreadyApplied
	}

	now := s.clock.Now()
	if now.After(entity.ValidUntil) {
		return nil, suggestiondomain.ErrExpired
	}

	parking, err := s.parkingRepo.FindByID(ctx, s.db, entity.ParkingID)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, suggestiondomain.ErrParkingNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parking.BasePriceCents = entity.SuggestedPriceCents
		parking.UpdatedAt = now
		if err := s.parkingRepo.UpdateBasePrice(ctx, tx, parking); err != nil {
			return err
		}
		return s.repo.MarkApplied(ctx, tx, entity.ID, now)
	})
	if err != nil {
		return nil, err
	}

	entity.IsApplied = true
	entity.AppliedAt = &now

	s.log.Info("price suggestion applied",
		zap.String("suggestion_id", entity.ID.String()),
		zap.String("parking_id", entity.ParkingID.String()),
		zap.Int64("new_base_cents", entity.SuggestedPriceCents),
	)
	return toResponse(entity), nil
}

func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	parkings, err := s.parkingRepo.List(ctx, s.db, parkingdomain.Parking{IsActive: true})
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for i := range parkings {
		if _, err := s.generateFor(ctx, &parkings[i]); err != nil {
			s.log.Warn("suggestion refresh failed",
				zap.String("parking_id", parkings[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func toResponse(entity *suggestiondomain.PriceSuggestion) *suggestiondomain.Response {
	return &suggestiondomain.Response{
		ID:                  entity.ID.String(),
		ParkingID:           entity.ParkingID.String(),
		AlgorithmType:       entity.AlgorithmType,
		SuggestedPriceCents: entity.SuggestedPriceCents,
		CurrentPriceCents:   entity.CurrentPriceCents,
		Confidence:          entity.Confidence,
		Factors:             entity.Factors,
		Reasoning:           entity.Reasoning,
		ValidFrom:           entity.ValidFrom,
		ValidUntil:          entity.ValidUntil,
		IsApplied:           entity.IsApplied,
		AppliedAt:           entity.AppliedAt,
		CreatedAt:           entity.CreatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
