package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spotlane/pricing/internal/config"
	"github.com/spotlane/pricing/internal/observability"
	obsmiddleware "github.com/spotlane/pricing/internal/observability/logger"
	obsmetrics "github.com/spotlane/pricing/internal/observability/metrics"
	obstracing "github.com/spotlane/pricing/internal/observability/tracing"
	"github.com/spotlane/pricing/internal/parking"
	parkingdomain "github.com/spotlane/pricing/internal/parking/domain"
	"github.com/spotlane/pricing/internal/pricerule"
	priceruledomain "github.com/spotlane/pricing/internal/pricerule/domain"
	"github.com/spotlane/pricing/internal/pricing"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"github.com/spotlane/pricing/internal/ratelimit"
	"github.com/spotlane/pricing/internal/scheduler"
	"github.com/spotlane/pricing/internal/suggestion"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	parking.Module,
	pricerule.Module,
	pricing.Module,
	suggestion.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	genID            *snowflake.Node
	parkingSvc       parkingdomain.Service
	priceRuleSvc     priceruledomain.Service
	pricingSvc       pricingdomain.Service
	suggestionSvc    suggestiondomain.Service
	calculateLimiter *ratelimit.CalculateLimiter
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	GenID            *snowflake.Node
	ParkingSvc       parkingdomain.Service
	PriceRuleSvc     priceruledomain.Service
	PricingSvc       pricingdomain.Service
	SuggestionSvc    suggestiondomain.Service
	CalculateLimiter *ratelimit.CalculateLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		genID:            p.GenID,
		parkingSvc:       p.ParkingSvc,
		priceRuleSvc:     p.PriceRuleSvc,
		pricingSvc:       p.PricingSvc,
		suggestionSvc:    p.SuggestionSvc,
		calculateLimiter: p.CalculateLimiter,
	}

	svc.registerParkingRoutes()
	svc.registerPriceRuleRoutes()
	svc.registerPricingRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerParkingRoutes() {
	parkings := s.engine.Group("/parkings")

	parkings.POST("", s.CreateParking)
	parkings.GET("", s.ListParkings)
	parkings.GET("/:id", s.GetParkingByID)
	parkings.PATCH("/:id/base-price", s.UpdateParkingBasePrice)
}

func (s *Server) registerPriceRuleRoutes() {
	rules := s.engine.Group("/price-rules")

	rules.POST("", s.CreatePriceRule)
	rules.GET("", s.ListPriceRules)
	rules.GET("/:id", s.GetPriceRuleByID)
	rules.PATCH("/:id", s.UpdatePriceRule)
	rules.DELETE("/:id", s.DeletePriceRule)

	// Public quote endpoint; the only route behind the rate limiter.
	rules.GET("/calculate-price/:parkingId", s.CalculateRateLimit(), s.CalculatePrice)
}

func (s *Server) registerPricingRoutes() {
	pricingGroup := s.engine.Group("/pricing")

	pricingGroup.GET("/price-for-range", s.PriceForRange)
	pricingGroup.GET("/historical/:parkingId", s.HistoricalPricing)

	pricingGroup.POST("/suggest", s.SuggestPrice)
	pricingGroup.GET("/suggestions", s.ListSuggestions)
	pricingGroup.GET("/suggestions/:id", s.GetSuggestionByID)
	pricingGroup.POST("/suggestions/:id/apply", s.ApplySuggestion)
}

// classifyErrorForLog tags request-log entries with the error family the
// response mapped to.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "", ""
	}
}
