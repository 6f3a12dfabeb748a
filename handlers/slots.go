package handlers

import (
	"net/http"

	"mytutor/middleware"
	"mytutor/models"
	"mytutor/services/slot"
	"mytutor/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SlotHandler struct {
	Engine slot.SlotEngine
	Logger *zap.Logger
}

func NewSlotHandler(engine slot.SlotEngine) *SlotHandler {
	return &SlotHandler{Engine: engine, Logger: utils.GetLogger()}
}

// ListAvailableHandler returns every bookable slot with its provider's card.
func (h *SlotHandler) ListAvailableHandler(c *gin.Context) {
	slots, err := h.Engine.ListAvailable(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// FilterHandler narrows the available slots by query parameters.
func (h *SlotHandler) FilterHandler(c *gin.Context) {
	var criteria models.SlotFilter
	if err := c.ShouldBindQuery(&criteria); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	slots, err := h.Engine.Filter(c.Request.Context(), criteria)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *SlotHandler) CreateSlotHandler(c *gin.Context) {
	var req models.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Logger.Debug("Invalid slot payload", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	created, err := h.Engine.CreateSlot(c.Request.Context(), middleware.IdentityFrom(c), req.StartTime, req.EndTime)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *SlotHandler) ModifySlotHandler(c *gin.Context) {
	var req models.ModifySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if req.StartTime == nil && req.EndTime == nil {
		utils.JSONError(c, http.StatusBadRequest, "Nothing to update", "provide startTime and/or endTime")
		return
	}
	updated, err := h.Engine.ModifySlot(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SlotHandler) DeactivateSlotHandler(c *gin.Context) {
	ok, err := h.Engine.DeactivateSlot(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, utils.ErrorResponse{Message: "Slot not found", Kind: utils.KindNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot deactivated"})
}

// ListMySlotsHandler returns the calling provider's slots.
func (h *SlotHandler) ListMySlotsHandler(c *gin.Context) {
	slots, err := h.Engine.ListProviderSlots(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *SlotHandler) ListAllSlotsHandler(c *gin.Context) {
	slots, err := h.Engine.ListAllSlots(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
