package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/spotlane/pricing/internal/clock"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
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
	Repo        priceruledomain.Repository
	ParkingRepo parkingdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        priceruledomain.Repository
	parkingRepo parkingdomain.Repository
}

func New(p Params) priceruledomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("pricerule.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		parkingRepo: p.ParkingRepo,
	}
}

func (s *Service) Create(ctx context.Context, req priceruledomain.CreateRequest) (*priceruledomain.Response, error) {
	parkingID, err := parseID(req.ParkingID)
	if err != nil {
		return nil, priceruledomain.ErrInvalidParking
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, priceruledomain.ErrInvalidName
	}

	adjustmentType, err := parseAdjustmentType(req.AdjustmentType)
	if err != nil {
		return nil, err
	}
	if err := validateAdjustmentValue(adjustmentType, req.AdjustmentValue); err != nil {
		return nil, err
	}
	if err := req.Conditions.Validate(); err != nil {
		return nil, err
	}

	ruleType, err := resolveRuleType(req.Type, req.Conditions)
	if err != nil {
		return nil, err
	}

	parking, err := s.parkingRepo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, err
	}
	if parking == nil {
		return nil, priceruledomain.ErrInvalidParking
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now()
	entity := &priceruledomain.PriceRule{
		ID:              s.genID.Generate(),
		ParkingID:       parkingID,
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		Type:            ruleType,
		AdjustmentType:  adjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		Conditions:      req.Conditions,
		Priority:        req.Priority,
		IsActive:        isActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("price rule created",
		zap.String("rule_id", entity.ID.String()),
		zap.String("parking_id", parkingID.String()),
		zap.String("adjustment_type", string(adjustmentType)),
		zap.Float64("adjustment_value", req.AdjustmentValue),
		zap.Int("priority", req.Priority),
	)

	return toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, id string) (*priceruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, priceruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, priceruledomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, req priceruledomain.ListRequest) ([]priceruledomain.Response, error) {
	filter := priceruledomain.PriceRule{}
	if trimmed := strings.TrimSpace(req.ParkingID); trimmed != "" {
		parkingID, err := parseID(trimmed)
		if err != nil {
			return nil, priceruledomain.ErrInvalidParking
		}
		filter.ParkingID = parkingID
	}
	if req.ActiveOnly {
		filter.IsActive = true
	}

	// Unknown parking ids fall through to an empty list; an empty rule set
	// is a valid state, not an error.
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]priceruledomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req priceruledomain.UpdateRequest) (*priceruledomain.Response, error) {
	ruleID, err := parseID(id)
	if err != nil {
		return nil, priceruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, priceruledomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, priceruledomain.ErrInvalidName
		}
		entity.Name = name
	}
	if req.Description != nil {
		entity.Description = strings.TrimSpace(*req.Description)
	}
	if req.AdjustmentType != nil {
		adjustmentType, err := parseAdjustmentType(*req.AdjustmentType)
		if err != nil {
			return nil, err
		}
		entity.AdjustmentType = adjustmentType
	}
	if req.AdjustmentValue != nil {
		entity.AdjustmentValue = *req.AdjustmentValue
	}
	if err := validateAdjustmentValue(entity.AdjustmentType, entity.AdjustmentValue); err != nil {
		return nil, err
	}
	if req.Conditions != nil {
		if err := req.Conditions.Validate(); err != nil {
			return nil, err
		}
		entity.Conditions = *req.Conditions
	}
	if req.Type != nil {
		ruleType, err := resolveRuleType(*req.Type, entity.Conditions)
		if err != nil {
			return nil, err
		}
		entity.Type = ruleType
	}
	if req.Priority != nil {
		entity.Priority = *req.Priority
	}
	if req.IsActive != nil {
		entity.IsActive = *req.IsActive
	}

	entity.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}

	return toResponse(entity), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ruleID, err := parseID(id)
	if err != nil {
		return priceruledomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, ruleID)
	if err != nil {
		return err
	}
	if entity == nil {
		return priceruledomain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, ruleID); err != nil {
		return err
	}

	s.log.Info("price rule deleted", zap.String("rule_id", ruleID.String()))
	return nil
}

func parseAdjustmentType(value string) (priceruledomain.AdjustmentType, error) {
	switch priceruledomain.AdjustmentType(strings.ToUpper(strings.TrimSpace(value))) {
	case priceruledomain.AdjustmentPercentage:
		return priceruledomain.AdjustmentPercentage, nil
	case priceruledomain.AdjustmentFixed:
		return priceruledomain.AdjustmentFixed, nil
	default:
		return "", priceruledomain.ErrInvalidAdjustmentType
	}
}

// validateAdjustmentValue keeps FIXED amounts in whole minor units so the
// resolver never sees fractional cents, and bounds PERCENTAGE discounts at
// -100%.
func validateAdjustmentValue(adjustmentType priceruledomain.AdjustmentType, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return priceruledomain.ErrInvalidAdjustmentValue
	}
	switch adjustmentType {
	case priceruledomain.AdjustmentFixed:
		if value != math.Trunc(value) {
			return priceruledomain.ErrInvalidAdjustmentValue
		}
	case priceruledomain.AdjustmentPercentage:
		if value < -100 {
			return priceruledomain.ErrInvalidAdjustmentValue
		}
	}
	return nil
}

func resolveRuleType(value string, conditions priceruledomain.Conditions) (priceruledomain.RuleType, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return conditions.DeriveType(), nil
	}
	switch priceruledomain.RuleType(trimmed) {
	case priceruledomain.RuleTypeTimeBased,
		priceruledomain.RuleTypeDayBased,
		priceruledomain.RuleTypeDateBased,
		priceruledomain.RuleTypeDurationBased,
		priceruledomain.RuleTypeDiscount:
		return priceruledomain.RuleType(trimmed), nil
	default:
		return "", priceruledomain.ErrInvalidRuleType
	}
}

func toResponse(rule *priceruledomain.PriceRule) *priceruledomain.Response {
	return &priceruledomain.Response{
		ID:              rule.ID.String(),
		ParkingID:       rule.ParkingID.String(),
		Name:            rule.Name,
		Description:     rule.Description,
		Type:            rule.Type,
		AdjustmentType:  rule.AdjustmentType,
		AdjustmentValue: rule.AdjustmentValue,
		Conditions:      rule.Conditions,
		Priority:        rule.Priority,
		IsActive:        rule.IsActive,
		CreatedAt:       rule.CreatedAt,
		UpdatedAt:       rule.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
