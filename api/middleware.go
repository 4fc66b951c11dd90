package api

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/finternet/finternet-backend/api/apistrings"
	"github.com/finternet/finternet-backend/models"
	"github.com/finternet/finternet-backend/services/security"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"
)

// AuthenticatedMiddleware resolves the Authorization header into a Caller.
// Every failure gets the same generic 401 body; the reason only reaches the
// logs and the auth_failures metric.
func (s *Server) AuthenticatedMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		caller, err := s.token.Authenticate(ctx.GetHeader("Authorization"))
		if err != nil {
			reason := authFailureReason(err)
			s.metrics.AuthFailures.WithLabelValues(reason).Inc()
			s.logger.WithFields(logrus.Fields{
				"path":   ctx.Request.URL.Path,
				"reason": reason,
			}).Debug("rejected credential")

			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
			return
		}

		/// Accessible User Across the App
		ctx.Set(utils.ActiveUserKey, caller)
		ctx.Next()
	}
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, utils.ErrMissingCredential):
		return "missing"
	case errors.Is(err, utils.ErrMalformedCredential):
		return "malformed"
	default:
		return "invalid"
	}
}

func CORSMiddleware(c *utils.Config) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", IdempotencyKeyHeader},
		ExposeHeaders:    []string{"Content-Length", IdempotencyHitHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	origins := c.CORSAllowedOrigins
	if len(origins) == 0 || containsWildcard(origins) {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	return cors.New(config)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Keys are scoped by caller and route, so two callers can
// never see each other's responses. Only 2xx responses are stored.
// Must run after AuthenticatedMiddleware.
func (s *Server) IdempotencyMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := strings.TrimSpace(ctx.GetHeader(IdempotencyKeyHeader))
		if key == "" || s.idempotency == nil {
			ctx.Next()
			return
		}

		caller, err := utils.GetActiveUser(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
			return
		}

		scoped := caller.ID + "|" + ctx.Request.Method + " " + ctx.FullPath() + "|" + key
		log := s.logger.WithFields(logrus.Fields{"idempotency_key": key, "path": ctx.Request.URL.Path})

		cached, found, err := s.idempotency.Get(ctx, scoped)
		if err != nil {
			log.WithError(err).Error("idempotency lookup failed")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, models.NewError(apistrings.IdempotencyUnavailable))
			return
		}
		if found {
			log.Info("Idempotency hit, replaying stored response")
			s.replay(ctx, cached)
			return
		}

		reserved, err := s.idempotency.Reserve(ctx, scoped)
		if err != nil {
			log.WithError(err).Error("idempotency reservation failed")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, models.NewError(apistrings.IdempotencyUnavailable))
			return
		}
		if !reserved {
			ctx.AbortWithStatusJSON(http.StatusConflict, models.NewError(apistrings.IdempotencyInProgress))
			return
		}
		defer func() {
			if err := s.idempotency.Release(ctx, scoped); err != nil {
				log.WithError(err).Warn("failed to release idempotency key")
			}
		}()

		// the previous holder may have saved between our lookup and reservation
		cached, found, err = s.idempotency.Get(ctx, scoped)
		if err != nil {
			log.WithError(err).Error("idempotency lookup failed")
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, models.NewError(apistrings.IdempotencyUnavailable))
			return
		}
		if found {
			s.replay(ctx, cached)
			return
		}

		w := &capturingWriter{ResponseWriter: ctx.Writer, body: &bytes.Buffer{}}
		ctx.Writer = w

		ctx.Next()

		status := w.Status()
		if status < 200 || status >= 300 {
			return
		}

		resp := security.CachedResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
			RecordID:    ctx.GetString(utils.CreatedRecordKey),
		}
		if err := s.idempotency.Save(ctx, scoped, resp); err != nil {
			log.WithError(err).Error("failed to save idempotency key")
			return
		}
		log.Debug("idempotency key saved")
	}
}

func (s *Server) replay(ctx *gin.Context, cached security.CachedResponse) {
	if cached.RecordID != "" {
		ctx.Set(utils.CreatedRecordKey, cached.RecordID)
	}
	ctx.Header(IdempotencyHitHeader, "true")
	ctx.Data(cached.Status, cached.ContentType, cached.Body)
	ctx.Abort()
}
