package api

import (
	"net/http"
	"strconv"

	"github.com/finternet/finternet-backend/api/apistrings"
	"github.com/finternet/finternet-backend/models"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

func (s *Server) listActivity(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	limit, err := queryInt(ctx, "limit", defaultActivityLimit)
	if err != nil || limit <= 0 || limit > maxActivityLimit {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidPagination))
		return
	}
	offset, err := queryInt(ctx, "offset", 0)
	if err != nil || offset < 0 {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidPagination))
		return
	}

	ctx.JSON(http.StatusOK, s.activity.GetByUser(ctx, activeUser.ID, limit, offset))
}

func queryInt(ctx *gin.Context, key string, fallback int) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
