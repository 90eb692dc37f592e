// Package server wires the HTTP surface: analytics read endpoints, the
// responsibility-matrix CRUD and the operational plumbing around them.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	analyticsdomain "github.com/spitfire8790/landiqr/internal/analytics/domain"
	auditdomain "github.com/spitfire8790/landiqr/internal/audit/domain"
	"github.com/spitfire8790/landiqr/internal/config"
	matrixdomain "github.com/spitfire8790/landiqr/internal/matrix/domain"
	obscontext "github.com/spitfire8790/landiqr/internal/observability/context"
	"github.com/spitfire8790/landiqr/internal/observability/logger"
	"github.com/spitfire8790/landiqr/internal/observability/metrics"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB

	analyticsSvc analyticsdomain.Service
	matrixSvc    matrixdomain.Service
	auditSvc     auditdomain.Service

	refreshLimiter *rateLimiter
}

type ServerParam struct {
	fx.In

	Engine       *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	AnalyticsSvc analyticsdomain.Service
	MatrixSvc    matrixdomain.Service
	AuditSvc     auditdomain.Service `optional:"true"`
}

// NewEngine builds the gin engine with the shared middleware chain.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

func NewServer(p ServerParam) *Server {
	return &Server{
		engine: p.Engine,
		cfg:    p.Cfg,
		log:    p.Log.Named("server"),
		db:     p.DB,

		analyticsSvc: p.AnalyticsSvc,
		matrixSvc:    p.MatrixSvc,
		auditSvc:     p.AuditSvc,

		refreshLimiter: newRateLimiter(p.Cfg.RefreshRateLimit, p.Cfg.RefreshRateWindow),
	}
}

// audit records a mutating action. Failures are logged and swallowed so
// the triggering request still succeeds.
func (s *Server) audit(c *gin.Context, action, targetType string, targetID *string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if requestID := obscontext.RequestIDFromGin(c); requestID != "" {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["request_id"] = requestID
	}
	err := s.auditSvc.Record(c.Request.Context(), auditdomain.ActorTypeUser, action, targetType, targetID, metadata, c.ClientIP())
	if err != nil {
		s.log.Warn("audit record failed", zap.String("action", action), zap.Error(err))
	}
}

// RegisterRoutes mounts every endpoint on the engine.
func (s *Server) RegisterRoutes() {
	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")

	analytics := api.Group("/analytics")
	analytics.GET("/organisations", s.GetOrganisationSummaries)
	analytics.GET("/segments", s.GetEventSegments)
	analytics.GET("/job-titles", s.GetJobTitleSegments)
	analytics.GET("/job-title-distribution", s.GetJobTitleDistribution)
	analytics.GET("/recency", s.GetRecencyStats)
	analytics.GET("/meta", s.GetAnalyticsMeta)
	analytics.POST("/refresh", s.RefreshAnalytics)

	matrix := api.Group("/matrix")
	matrix.GET("/board", s.GetBoard)

	matrix.GET("/groups", s.ListGroups)
	matrix.POST("/groups", s.CreateGroup)
	matrix.PATCH("/groups/:id", s.RenameGroup)
	matrix.DELETE("/groups/:id", s.DeleteGroup)

	matrix.GET("/categories", s.ListCategories)
	matrix.POST("/categories", s.CreateCategory)
	matrix.DELETE("/categories/:id", s.DeleteCategory)

	matrix.GET("/people", s.ListPeople)
	matrix.POST("/people", s.CreatePerson)
	matrix.DELETE("/people/:id", s.DeletePerson)

	matrix.GET("/tasks", s.ListTasks)
	matrix.POST("/tasks", s.CreateTask)
	matrix.DELETE("/tasks/:id", s.DeleteTask)

	matrix.POST("/allocations", s.CreateAllocation)
	matrix.DELETE("/allocations", s.DeleteAllocation)

	api.GET("/audit", s.ListAuditLog)
}

func (s *Server) ListAuditLog(c *gin.Context) {
	if s.auditSvc == nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListFilter{
		Action:     strings.TrimSpace(c.Query("action")),
		TargetType: strings.TrimSpace(c.Query("target_type")),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) Healthz(c *gin.Context) {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", s.cfg.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)
