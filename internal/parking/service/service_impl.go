package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/spotlane/pricing/internal/clock"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  parkingdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  parkingdomain.Repository
}

func New(p Params) parkingdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("parking.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req parkingdomain.CreateRequest) (*parkingdomain.Response, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, parkingdomain.ErrInvalidTitle
	}
	if req.BasePriceCents < 0 {
		return nil, parkingdomain.ErrInvalidBasePrice
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, parkingdomain.ErrInvalidCurrency
	}

	timezone := strings.TrimSpace(req.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, parkingdomain.ErrInvalidTimezone
	}

	var ownerID snowflake.ID
	if trimmed := strings.TrimSpace(req.OwnerID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, parkingdomain.ErrInvalidOwner
		}
		ownerID = parsed
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	entity := &parkingdomain.Parking{
		ID:             id,
		OwnerID:        ownerID,
		Slug:           slug.Make(title) + "-" + id.String(),
		Title:          title,
		Address:        strings.TrimSpace(req.Address),
		Timezone:       timezone,
		BasePriceCents: req.BasePriceCents,
		Currency:       currency,
		IsActive:       true,
		Metadata:       normalizeMetadata(req.Metadata),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("parking created",
		zap.String("parking_id", entity.ID.String()),
		zap.Int64("base_price_cents", entity.BasePriceCents),
		zap.String("currency", entity.Currency),
	)

	return toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, id string) (*parkingdomain.Response, error) {
	parkingID, err := parseID(id)
	if err != nil {
		return nil, parkingdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, parkingdomain.ErrNotFound
	}
	return toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, req parkingdomain.ListRequest) ([]parkingdomain.Response, error) {
	filter := parkingdomain.Parking{}
	if trimmed := strings.TrimSpace(req.OwnerID); trimmed != "" {
		ownerID, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, parkingdomain.ErrInvalidOwner
		}
		filter.OwnerID = ownerID
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]parkingdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) UpdateBasePrice(ctx context.Context, id string, basePriceCents int64) (*parkingdomain.Response, error) {
	if basePriceCents < 0 {
		return nil, parkingdomain.ErrInvalidBasePrice
	}

	parkingID, err := parseID(id)
	if err != nil {
		return nil, parkingdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, parkingID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, parkingdomain.ErrNotFound
	}

	entity.BasePriceCents = basePriceCents
	entity.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateBasePrice(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("parking base price updated",
		zap.String("parking_id", entity.ID.String()),
		zap.Int64("base_price_cents", basePriceCents),
	)

	return toResponse(entity), nil
}

func toResponse(p *parkingdomain.Parking) *parkingdomain.Response {
	resp := &parkingdomain.Response{
		ID:             p.ID.String(),
		Slug:           p.Slug,
		Title:          p.Title,
		Address:        p.Address,
		Timezone:       p.Timezone,
		BasePriceCents: p.BasePriceCents,
		Currency:       p.Currency,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.OwnerID != 0 {
		resp.OwnerID = p.OwnerID.String()
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	return resp
}

func normalizeMetadata(input map[string]any) datatypes.JSONMap {
	if input == nil {
		return datatypes.JSONMap{}
	}
	return datatypes.JSONMap(input)
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
