package handlers

import (
	"net/http"

	"mytutor/middleware"
	"mytutor/models"
	"mytutor/services/rating"
	"mytutor/utils"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	Engine rating.RatingEngine
}

func NewReviewHandler(engine rating.RatingEngine) *ReviewHandler {
	return &ReviewHandler{Engine: engine}
}

func (h *ReviewHandler) CreateReviewHandler(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	review, err := h.Engine.CreateReview(c.Request.Context(), middleware.IdentityFrom(c), req.SlotID, *req.Score, req.Comment)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) EditReviewHandler(c *gin.Context) {
	var req models.EditReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	summary, err := h.Engine.EditReview(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) GetReviewHandler(c *gin.Context) {
	summary, err := h.Engine.ReviewByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) MyReviewsHandler(c *gin.Context) {
	reviews, err := h.Engine.ReviewsAuthoredBy(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (h *ReviewHandler) ProviderReviewsHandler(c *gin.Context) {
	reviews, err := h.Engine.ReviewsFor(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// RecomputeRatingHandler recalculates a provider's stored average.
func (h *ReviewHandler) RecomputeRatingHandler(c *gin.Context) {
	providerID := c.Param("providerId")
	avg, err := h.Engine.RecomputeAverage(c.Request.Context(), providerID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "ratingAverage": avg})
}
