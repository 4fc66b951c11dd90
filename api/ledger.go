package api

import (
	"errors"
	"net/http"

	"github.com/finternet/finternet-backend/api/apistrings"
	"github.com/finternet/finternet-backend/models"
	"github.com/finternet/finternet-backend/services/ledger"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-gonic/gin"
)

type Ledger struct {
	server        *Server
	ledgerService *ledger.LedgerService
}

func NewLedgerRoutes(service *ledger.LedgerService) *Ledger {
	return &Ledger{ledgerService: service}
}

func (l *Ledger) router(server *Server) {
	l.server = server

	serverGroupV1 := server.router.Group("/api/transactions")
	serverGroupV1.Use(server.AuthenticatedMiddleware(), server.activityLog.ActivityLogger())
	serverGroupV1.GET("", l.listTransactions)
	serverGroupV1.POST("", server.IdempotencyMiddleware(), l.createTransaction)
	serverGroupV1.GET(":id", l.getTransaction)
}

func (l *Ledger) listTransactions(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	ctx.JSON(http.StatusOK, l.ledgerService.ListTransactions(ctx, activeUser))
}

func (l *Ledger) createTransaction(ctx *gin.Context) {
	var request ledger.CreateTransactionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewErrorWithDetails(apistrings.InvalidTransactionInput, err.Error()))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	transaction, err := l.ledgerService.CreateTransaction(ctx, activeUser, request)
	if err != nil {
		l.server.logger.WithError(err).Error("could not create transaction")
		ctx.JSON(http.StatusInternalServerError, models.NewError(apistrings.ServerError))
		return
	}

	ctx.Set(utils.CreatedRecordKey, transaction.ID)
	ctx.JSON(http.StatusCreated, transaction)
}

func (l *Ledger) getTransaction(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	transaction, err := l.ledgerService.GetTransaction(ctx, activeUser, ctx.Param("id"))
	if errors.Is(err, ledger.ErrTransactionNotFound) {
		ctx.JSON(http.StatusNotFound, models.NewError(apistrings.TransactionNotFound))
		return
	} else if err != nil {
		l.server.logger.WithError(err).Error("could not fetch transaction")
		ctx.JSON(http.StatusInternalServerError, models.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, transaction)
}
