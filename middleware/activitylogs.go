package middleware

import (
	"fmt"
	"net/http"

	activitylogs "github.com/finternet/finternet-backend/services/activity_logs"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-gonic/gin"
)

type ActivityLogMiddleware struct {
	log *activitylogs.ActivityLog
}

func NewActivityLogMiddleware(log *activitylogs.ActivityLog) *ActivityLogMiddleware {
	return &ActivityLogMiddleware{
		log: log,
	}
}

// ActivityLogger records successful record creations for the authenticated
// caller. It must run after the auth middleware.
func (a *ActivityLogMiddleware) ActivityLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entity, ok := loggedRoutes[route{c.Request.Method, c.FullPath()}]
		if !ok {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}

		caller, err := utils.GetActiveUser(c)
		if err != nil {
			return
		}

		var entityID *string
		if id := c.GetString(utils.CreatedRecordKey); id != "" {
			entityID = &id
		}

		a.log.Create(c, activitylogs.CreateActivityLogParams{
			UserID:     caller.ID,
			Action:     getActionFromRequest(c, caller, entity),
			EntityType: &entity,
			EntityID:   entityID,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
	}
}

type route struct {
	method string
	path   string
}

// Should be in sync with the cases in getActionFromRequest
var loggedRoutes = map[route]string{
	{http.MethodPost, "/api/transactions"}: "transaction",
	{http.MethodPost, "/api/payments"}:     "payment",
}

func getActionFromRequest(c *gin.Context, caller utils.Caller, entity string) string {
	if c.Writer.Header().Get("X-Idempotency-Hit") == "true" {
		return fmt.Sprintf("%s replayed a %s request", caller.Name, entity)
	}
	return fmt.Sprintf("%s created a %s", caller.Name, entity)
}
