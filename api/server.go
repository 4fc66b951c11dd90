package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/finternet/finternet-backend/middleware"
	"github.com/finternet/finternet-backend/models"
	activitylogs "github.com/finternet/finternet-backend/services/activity_logs"
	"github.com/finternet/finternet-backend/services/monitoring/logging"
	"github.com/finternet/finternet-backend/services/monitoring/metrics"
	"github.com/finternet/finternet-backend/services/security"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-gonic/gin"
)

const shutdownGrace = 10 * time.Second

// Routes is a group of endpoints mounted on a Server. Ledger and Payments
// are the two implementations.
type Routes interface {
	router(server *Server)
}

type Server struct {
	router      *gin.Engine
	config      *utils.Config
	logger      *logging.Logger
	token       *utils.JWTToken
	metrics     *metrics.Metrics
	idempotency security.IdempotencyStore
	activity    *activitylogs.ActivityLog
	activityLog *middleware.ActivityLogMiddleware
}

// NewServer builds the gin engine shared by both services. The idempotency
// store may be nil, in which case Idempotency-Key headers are ignored.
func NewServer(c *utils.Config, l *logging.Logger, m *metrics.Metrics, store security.IdempotencyStore) *Server {
	if c.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	g := gin.New()
	g.Use(gin.Recovery())
	g.Use(CORSMiddleware(c))
	g.Use(l.LoggingMiddleWare())

	activity := activitylogs.NewActivityLog()
	m.TrackStoreSize("activity", activity.Len)

	s := &Server{
		router:      g,
		config:      c,
		logger:      l,
		token:       utils.NewJWTToken(c),
		metrics:     m,
		idempotency: store,
		activity:    activity,
		activityLog: middleware.NewActivityLogMiddleware(activity),
	}

	welcome := models.NewSuccess(fmt.Sprintf("Welcome to Finternet %s!", c.ServiceName), nil)
	g.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, welcome)
	})
	g.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, models.NewHealth(c.ServiceName))
	})
	g.GET("/metrics", gin.WrapH(m.Handler()))

	activityGroup := g.Group("/api/activity")
	activityGroup.Use(s.AuthenticatedMiddleware())
	activityGroup.GET("", s.listActivity)

	return s
}

// Mount registers route groups on the engine.
func (s *Server) Mount(groups ...Routes) *Server {
	for _, r := range groups {
		r.router(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is canceled, then shuts the listener down and
// waits for in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", s.config.ServerPort),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
