package handlers

import (
	"context"
	"net/http"

	"mytutor/middleware"
	"mytutor/models"
	"mytutor/services/booking"
	"mytutor/utils"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	Engine booking.BookingEngine
}

func NewBookingHandler(engine booking.BookingEngine) *BookingHandler {
	return &BookingHandler{Engine: engine}
}

type bookingAction func(ctx context.Context, caller models.Identity, slotID string) (*models.Booking, error)

// respondBooking runs action against the :slotId path parameter.
func respondBooking(c *gin.Context, status int, action bookingAction) {
	b, err := action(c.Request.Context(), middleware.IdentityFrom(c), c.Param("slotId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(status, b)
}

func (h *BookingHandler) BookHandler(c *gin.Context) {
	respondBooking(c, http.StatusCreated, h.Engine.Book)
}

func (h *BookingHandler) ClientCancelHandler(c *gin.Context) {
	respondBooking(c, http.StatusOK, h.Engine.ClientCancel)
}

func (h *BookingHandler) ProviderCancelHandler(c *gin.Context) {
	respondBooking(c, http.StatusOK, h.Engine.ProviderCancel)
}

func (h *BookingHandler) MarkCompletedHandler(c *gin.Context) {
	respondBooking(c, http.StatusOK, h.Engine.MarkCompleted)
}

func (h *BookingHandler) MarkNoShowHandler(c *gin.Context) {
	respondBooking(c, http.StatusOK, h.Engine.MarkNoShow)
}

func (h *BookingHandler) ListMineHandler(c *gin.Context) {
	slots, err := h.Engine.ListMine(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *BookingHandler) ListAllHandler(c *gin.Context) {
	slots, err := h.Engine.ListAll(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
