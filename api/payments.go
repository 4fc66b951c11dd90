package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/finternet/finternet-backend/api/apistrings"
	"github.com/finternet/finternet-backend/models"
	"github.com/finternet/finternet-backend/services/payment"
	"github.com/finternet/finternet-backend/utils"
	"github.com/gin-gonic/gin"
)

type Payments struct {
	server         *Server
	paymentService *payment.PaymentService
}

func NewPaymentRoutes(service *payment.PaymentService) *Payments {
	return &Payments{paymentService: service}
}

func (p *Payments) router(server *Server) {
	p.server = server

	serverGroupV1 := server.router.Group("/api/payments")
	serverGroupV1.Use(server.AuthenticatedMiddleware(), server.activityLog.ActivityLogger())
	serverGroupV1.GET("", p.listPayments)
	serverGroupV1.POST("", server.IdempotencyMiddleware(), p.createPayment)
	serverGroupV1.GET(":id", p.getPayment)

	// public
	server.router.GET("/api/exchange-rates", p.exchangeRates)
}

func (p *Payments) listPayments(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	ctx.JSON(http.StatusOK, p.paymentService.ListPayments(ctx, activeUser))
}

func (p *Payments) createPayment(ctx *gin.Context) {
	var request payment.CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, models.NewErrorWithDetails(apistrings.InvalidPaymentInput, err.Error()))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	created, err := p.paymentService.CreatePayment(ctx, activeUser, request)
	if errors.Is(err, payment.ErrInvalidPaymentKind) {
		ctx.JSON(http.StatusBadRequest, models.NewError(apistrings.InvalidPaymentType))
		return
	} else if err != nil {
		p.server.logger.WithError(err).Error("could not create payment")
		ctx.JSON(http.StatusInternalServerError, models.NewError(apistrings.ServerError))
		return
	}

	ctx.Set(utils.CreatedRecordKey, created.ID)
	ctx.JSON(http.StatusCreated, created)
}

func (p *Payments) getPayment(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, models.NewError(apistrings.Unauthorized))
		return
	}

	found, err := p.paymentService.GetPayment(ctx, activeUser, ctx.Param("id"))
	if errors.Is(err, payment.ErrPaymentNotFound) {
		ctx.JSON(http.StatusNotFound, models.NewError(apistrings.PaymentNotFound))
		return
	} else if err != nil {
		p.server.logger.WithError(err).Error("could not fetch payment")
		ctx.JSON(http.StatusInternalServerError, models.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (p *Payments) exchangeRates(ctx *gin.Context) {
	rates, err := p.paymentService.ExchangeRates(ctx)
	if err != nil {
		p.server.logger.WithError(err).Error("could not load exchange rates")
		ctx.JSON(http.StatusBadGateway, models.NewError(apistrings.RatesUnavailable))
		return
	}

	ctx.JSON(http.StatusOK, payment.ExchangeRatesResponse{
		Rates:     rates,
		Timestamp: time.Now().UTC(),
	})
}
