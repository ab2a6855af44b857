package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subdto "github.com/tastyaana/tiffin/internal/application/subscription/dto"
	"github.com/tastyaana/tiffin/internal/application/subscription/usecases"
	"github.com/tastyaana/tiffin/internal/domain/subscription"
	"github.com/tastyaana/tiffin/internal/shared/logger"
	"github.com/tastyaana/tiffin/internal/shared/utils"
)

type SubscriptionHandler struct {
	createSubscriptionUC   *usecases.CreateSubscriptionUseCase
	activateSubscriptionUC *usecases.ActivateSubscriptionUseCase
	cancelSubscriptionUC   *usecases.CancelSubscriptionUseCase
	getSubscriptionUC      *usecases.GetSubscriptionUseCase
	listSubscriptionsUC    *usecases.ListUserSubscriptionsUseCase
	skipMealUC             *usecases.SkipMealUseCase
	unskipMealUC           *usecases.UnskipMealUseCase
	replaceMealUC          *usecases.ReplaceMealUseCase
	customizeMealUC        *usecases.CustomizeMealUseCase
	logger                 logger.Interface
}

func NewSubscriptionHandler(
	createSubscriptionUC *usecases.CreateSubscriptionUseCase,
	activateSubscriptionUC *usecases.ActivateSubscriptionUseCase,
	cancelSubscriptionUC *usecases.CancelSubscriptionUseCase,
	getSubscriptionUC *usecases.GetSubscriptionUseCase,
	listSubscriptionsUC *usecases.ListUserSubscriptionsUseCase,
	skipMealUC *usecases.SkipMealUseCase,
	unskipMealUC *usecases.UnskipMealUseCase,
	replaceMealUC *usecases.ReplaceMealUseCase,
	customizeMealUC *usecases.CustomizeMealUseCase,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		createSubscriptionUC:   createSubscriptionUC,
		activateSubscriptionUC: activateSubscriptionUC,
		cancelSubscriptionUC:   cancelSubscriptionUC,
		getSubscriptionUC:      getSubscriptionUC,
		listSubscriptionsUC:    listSubscriptionsUC,
		skipMealUC:             skipMealUC,
		unskipMealUC:           unskipMealUC,
		replaceMealUC:          replaceMealUC,
		customizeMealUC:        customizeMealUC,
		logger:                 logger.NewLogger(),
	}
}

type CreateSubscriptionRequest struct {
	UserID              uint   `json:"user_id" binding:"required"`
	PlanSID             string `json:"plan_sid" binding:"required"`
	TotalMeals          int    `json:"total_meals"`
	StartDate           string `json:"start_date" binding:"required,civildate"`
	StartShift          string `json:"start_shift" binding:"required,oneof=morning evening"`
	Shift               string `json:"shift" binding:"omitempty,oneof=morning evening"`
	TimingMorning       bool   `json:"timing_morning"`
	TimingEvening       bool   `json:"timing_evening"`
	ActivateImmediately bool   `json:"activate_immediately"`
}

type CancelSubscriptionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type SkipMealRequest struct {
	Date      string `json:"date" binding:"required,civildate"`
	Shift     string `json:"shift" binding:"required,oneof=morning evening"`
	Reason    string `json:"reason"`
	SkippedBy string `json:"skipped_by"`
}

type UnskipMealRequest struct {
	Date  string `json:"date" binding:"required,civildate"`
	Shift string `json:"shift" binding:"required,oneof=morning evening"`
}

type ReplaceMealRequest struct {
	Date               string `json:"date" binding:"required,civildate"`
	Shift              string `json:"shift" binding:"required,oneof=morning evening"`
	ReplacementPlanSID string `json:"replacement_plan_sid" binding:"required"`
}

type CustomizationAddonRequest struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CustomizeMealRequest struct {
	Date               string                      `json:"date" binding:"required,civildate"`
	Shift              string                      `json:"shift" binding:"required,oneof=morning evening"`
	Type               string                      `json:"type" binding:"required,oneof=one_time permanent"`
	ReplacementMealSID string                      `json:"replacement_meal_sid"`
	DietaryPreference  string                      `json:"dietary_preference"`
	SpiceLevel         string                      `json:"spice_level"`
	Preferences        []string                    `json:"preferences"`
	Addons             []CustomizationAddonRequest `json:"addons"`
	ExtraItems         []CustomizationAddonRequest `json:"extra_items"`
	IsAvailable        *bool                       `json:"is_available"`
}

func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for create subscription", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	cmd := usecases.CreateSubscriptionCommand{
		UserID:     req.UserID,
		PlanSID:    req.PlanSID,
		TotalMeals: req.TotalMeals,
		StartDate:  req.StartDate,
		StartShift: req.StartShift,
		Shift:      req.Shift,
		Timing: subscription.DeliveryTiming{
			Morning: req.TimingMorning,
			Evening: req.TimingEvening,
		},
		ActivateImmediately: req.ActivateImmediately,
	}

	result, err := h.createSubscriptionUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, subdto.FromSubscription(result.Subscription, true), "Subscription created successfully")
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	sub, err := h.getSubscriptionUC.Execute(c.Request.Context(), c.Param("sid"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.FromSubscription(sub, true))
}

func (h *SubscriptionHandler) ListUserSubscriptions(c *gin.Context) {
	userID, err := utils.ParseUintQuery(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	subs, err := h.listSubscriptionsUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subdto.FromSubscriptions(subs))
}

func (h *SubscriptionHandler) ActivateSubscription(c *gin.Context) {
	sub, err := h.activateSubscriptionUC.Execute(c.Request.Context(), usecases.ActivateSubscriptionCommand{
		SubscriptionSID: c.Param("sid"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription activated successfully", subdto.FromSubscription(sub, false))
}

func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for cancel subscription", "sid", c.Param("sid"), "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.cancelSubscriptionUC.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionSID: c.Param("sid"),
		Reason:          req.Reason,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled successfully", subdto.FromSubscription(sub, false))
}

func (h *SubscriptionHandler) SkipMeal(c *gin.Context) {
	var req SkipMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for skip meal", "sid", c.Param("sid"), "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.skipMealUC.Execute(c.Request.Context(), usecases.SkipMealCommand{
		SubscriptionSID: c.Param("sid"),
		Date:            req.Date,
		Shift:           req.Shift,
		Reason:          req.Reason,
		SkippedBy:       req.SkippedBy,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Meal skip recorded", subdto.FromSubscription(sub, false))
}

func (h *SubscriptionHandler) UnskipMeal(c *gin.Context) {
	var req UnskipMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for unskip meal", "sid", c.Param("sid"), "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.unskipMealUC.Execute(c.Request.Context(), usecases.UnskipMealCommand{
		SubscriptionSID: c.Param("sid"),
		Date:            req.Date,
		Shift:           req.Shift,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Meal skip withdrawn", subdto.FromSubscription(sub, false))
}

func (h *SubscriptionHandler) ReplaceMeal(c *gin.Context) {
	var req ReplaceMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for replace meal", "sid", c.Param("sid"), "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.replaceMealUC.Execute(c.Request.Context(), usecases.ReplaceMealCommand{
		SubscriptionSID:    c.Param("sid"),
		Date:               req.Date,
		Shift:              req.Shift,
		ReplacementPlanSID: req.ReplacementPlanSID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Meal replacement recorded", gin.H{
		"entry":            result.Entry,
		"payment_required": result.PaymentRequired,
		"subscription":     subdto.FromSubscription(result.Subscription, false),
	})
}

func (h *SubscriptionHandler) CustomizeMeal(c *gin.Context) {
	var req CustomizeMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for customize meal", "sid", c.Param("sid"), "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	// Absent is_available means the meal is still wanted.
	unavailable := req.IsAvailable != nil && !*req.IsAvailable

	result, err := h.customizeMealUC.Execute(c.Request.Context(), usecases.CustomizeMealCommand{
		SubscriptionSID:    c.Param("sid"),
		Date:               req.Date,
		Shift:              req.Shift,
		Type:               req.Type,
		ReplacementMealSID: req.ReplacementMealSID,
		DietaryPreference:  req.DietaryPreference,
		SpiceLevel:         req.SpiceLevel,
		Preferences:        req.Preferences,
		Addons:             toAddonInputs(req.Addons),
		ExtraItems:         toAddonInputs(req.ExtraItems),
		Unavailable:        unavailable,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Meal customization recorded", gin.H{
		"entry":            result.Entry,
		"payment_required": result.PaymentRequired,
		"subscription":     subdto.FromSubscription(result.Subscription, false),
	})
}

func toAddonInputs(reqs []CustomizationAddonRequest) []usecases.CustomizationAddonInput {
	if len(reqs) == 0 {
		return nil
	}
	inputs := make([]usecases.CustomizationAddonInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, usecases.CustomizationAddonInput{
			Name:     r.Name,
			Price:    utils.DecimalFromFloat(r.Price),
			Quantity: r.Quantity,
		})
	}
	return inputs
}
