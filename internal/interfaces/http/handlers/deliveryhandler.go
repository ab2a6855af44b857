package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastyaana/tiffin/internal/application/delivery/usecases"
	"github.com/tastyaana/tiffin/internal/shared/logger"
	"github.com/tastyaana/tiffin/internal/shared/utils"
)

type DeliveryHandler struct {
	getDeliveriesUC      *usecases.GetDeliveriesUseCase
	markDeliveryStatusUC *usecases.MarkDeliveryStatusUseCase
	reconcileZoneUC      *usecases.ReconcileZoneUseCase
	logger               logger.Interface
}

func NewDeliveryHandler(
	getDeliveriesUC *usecases.GetDeliveriesUseCase,
	markDeliveryStatusUC *usecases.MarkDeliveryStatusUseCase,
	reconcileZoneUC *usecases.ReconcileZoneUseCase,
) *DeliveryHandler {
	return &DeliveryHandler{
		getDeliveriesUC:      getDeliveriesUC,
		markDeliveryStatusUC: markDeliveryStatusUC,
		reconcileZoneUC:      reconcileZoneUC,
		logger:               logger.NewLogger(),
	}
}

type MarkDeliveryStatusRequest struct {
	Status    string `json:"status" binding:"required"`
	Actor     string `json:"actor"`
	Note      string `json:"note"`
	DriverSID string `json:"driver_sid"`
}

type ReconcileDeliveriesRequest struct {
	Date      string `json:"date" binding:"required,civildate"`
	SellerSID string `json:"seller_sid"`
}

// GetDeliveries lists the reconciled delivery rows for a date. Reading is
// not a pure query: it materializes tracking records for occurrences that
// have none yet.
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	userID, err := utils.ParseOptionalUintQuery(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	priceMin, err := utils.ParseOptionalDecimalQuery(c, "price_min")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	priceMax, err := utils.ParseOptionalDecimalQuery(c, "price_max")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	page, pageSize := utils.ParsePagination(c)

	query := usecases.GetDeliveriesQuery{
		Date:      c.Query("date"),
		Shift:     c.Query("shift"),
		UserID:    userID,
		SellerSID: c.Query("seller_sid"),
		PlanSID:   c.Query("plan_sid"),
		Status:    c.Query("status"),
		DriverSID: c.Query("driver_sid"),
		PriceMin:  priceMin,
		PriceMax:  priceMax,
		Search:    c.Query("search"),
		Page:      page,
		PageSize:  pageSize,
	}

	result, err := h.getDeliveriesUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Deliveries, int64(result.Total), result.Page, result.PageSize)
}

// MarkDeliveryStatus transitions one tracking record and applies any ledger
// consequence of the transition.
func (h *DeliveryHandler) MarkDeliveryStatus(c *gin.Context) {
	var req MarkDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for delivery status",
			"delivery_number", c.Param("number"),
			"error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.markDeliveryStatusUC.Execute(c.Request.Context(), usecases.MarkDeliveryStatusCommand{
		DeliveryNumber: c.Param("number"),
		Status:         req.Status,
		Actor:          req.Actor,
		Note:           req.Note,
		DriverSID:      req.DriverSID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Delivery status updated", gin.H{
		"delivery_number":      result.Record.DeliveryNumber(),
		"status":               result.Record.Status(),
		"ledger":               result.Ledger,
		"subscription_expired": result.Expired,
	})
}

// ReconcileDeliveries materializes tracking records for a date up front,
// without waiting for a dashboard read.
func (h *DeliveryHandler) ReconcileDeliveries(c *gin.Context) {
	var req ReconcileDeliveriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for delivery reconciliation", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reconcileZoneUC.Execute(c.Request.Context(), usecases.ReconcileZoneCommand{
		Date:      req.Date,
		SellerSID: req.SellerSID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Delivery reconciliation completed", result)
}
