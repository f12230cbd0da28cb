package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"reviewservice/cache"
	"reviewservice/models"
	"reviewservice/monitoring"
	"reviewservice/repository"
	"reviewservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
)

// ReviewHandler serves the /reviews resource.
type ReviewHandler struct {
	Reviews repository.ReviewRepository
	Cache   *cache.Cache
	Metrics *monitoring.Metrics
}

// GetReviews lists every review, served from Redis when cached.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	ctx := c.Request.Context()

	cached, err := h.Cache.GetReviews(ctx)
	if err == nil {
		utils.Log.Debug("Cache HIT: reviews")
		h.Metrics.ObserveReview("list", "ok")
		c.JSON(http.StatusOK, cached)
		return
	}
	if h.Cache.Enabled() {
		utils.Log.Debug("Cache MISS: reviews")
	}

	version, cacheErr := h.Cache.ReviewsVersion(ctx)
	reviews, err := h.Reviews.List(ctx)
	if err != nil {
		h.fail(c, "list", err)
		return
	}

	if cacheErr == nil {
		cacheErr = h.Cache.SetReviews(ctx, reviews, version)
	}
	logCacheFill(cacheErr, map[string]interface{}{"key": cache.ReviewsCacheKey})

	h.Metrics.ObserveReview("list", "ok")
	c.JSON(http.StatusOK, reviews)
}

// CreateReview accepts form or JSON input and answers 201 with the stored review.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	if blankScore(c) {
		h.Metrics.ObserveReview("create", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"score": "score is required"}})
		return
	}

	var input models.CreateReviewInput
	if err := c.ShouldBind(&input); err != nil {
		h.Metrics.ObserveReview("create", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		h.Metrics.ObserveReview("create", "invalid")
		utils.ValidationErrorResponse(c, err)
		return
	}

	review := input.Review()
	if err := h.Reviews.Create(c.Request.Context(), &review); err != nil {
		h.fail(c, "create", err)
		return
	}

	h.invalidate(c, review.ID)
	utils.LogInfo("Review created", map[string]interface{}{
		"review_id": review.ID,
		"user_id":   review.UserID,
		"game_id":   review.GameID,
	})

	h.Metrics.ObserveReview("create", "ok")
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) GetReviewByID(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		h.notFound(c, "get")
		return
	}
	ctx := c.Request.Context()

	if cached, err := h.Cache.GetReview(ctx, id); err == nil {
		utils.Log.Debugf("Cache HIT: review %d", id)
		h.Metrics.ObserveReview("get", "ok")
		c.JSON(http.StatusOK, cached)
		return
	}

	version, cacheErr := h.Cache.ReviewVersion(ctx, id)
	review, err := h.Reviews.Get(ctx, id)
	if err != nil {
		h.fail(c, "get", err)
		return
	}

	if cacheErr == nil {
		cacheErr = h.Cache.SetReview(ctx, review, version)
	}
	logCacheFill(cacheErr, map[string]interface{}{"review_id": id})

	h.Metrics.ObserveReview("get", "ok")
	c.JSON(http.StatusOK, review)
}

// UpdateReview applies a partial update of score and/or comment.
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		h.notFound(c, "update")
		return
	}

	if blankScore(c) {
		h.Metrics.ObserveReview("update", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"score": "score must be an integer"}})
		return
	}

	var input models.UpdateReviewInput
	if err := c.ShouldBind(&input); err != nil {
		h.Metrics.ObserveReview("update", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateStruct(input); err != nil {
		h.Metrics.ObserveReview("update", "invalid")
		utils.ValidationErrorResponse(c, err)
		return
	}

	ctx := c.Request.Context()
	if input.Empty() {
		review, err := h.Reviews.Get(ctx, id)
		if err != nil {
			h.fail(c, "update", err)
			return
		}
		h.Metrics.ObserveReview("update", "ok")
		c.JSON(http.StatusOK, review)
		return
	}

	review, err := h.Reviews.Update(ctx, id, input)
	if err != nil {
		h.fail(c, "update", err)
		return
	}

	h.invalidate(c, id)
	h.Metrics.ObserveReview("update", "ok")
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		h.notFound(c, "delete")
		return
	}

	if err := h.Reviews.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete", err)
		return
	}

	h.invalidate(c, id)
	utils.LogInfo("Review deleted", map[string]interface{}{"review_id": id})

	h.Metrics.ObserveReview("delete", "ok")
	c.JSON(http.StatusOK, gin.H{"delete_successful": true})
}

// reviewID parses the :id path segment. Anything that is not a positive
// integer cannot name a review.
func reviewID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// blankScore reports a form body that carries score with no value. The form
// binder would read it as 0.
func blankScore(c *gin.Context) bool {
	if c.ContentType() == binding.MIMEJSON {
		return false
	}
	score, ok := c.GetPostForm("score")
	return ok && strings.TrimSpace(score) == ""
}

func (h *ReviewHandler) notFound(c *gin.Context, op string) {
	h.Metrics.ObserveReview(op, "not_found")
	c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
}

// fail maps repository errors onto HTTP responses.
func (h *ReviewHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.notFound(c, op)
	case errors.Is(err, repository.ErrInvalidReference):
		h.Metrics.ObserveReview(op, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Metrics.ObserveReview(op, "error")
		utils.LogError("Review "+op+" failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + op + " review"})
	}
}

func logCacheFill(err error, fields map[string]interface{}) {
	switch {
	case err == nil:
	case errors.Is(err, cache.ErrStale):
		utils.LogDebug("Cache fill skipped after concurrent write", fields)
	default:
		fields["error"] = err.Error()
		utils.LogWarn("Failed to cache reviews", fields)
	}
}

func (h *ReviewHandler) invalidate(c *gin.Context, id uint) {
	if err := h.Cache.InvalidateReviews(c.Request.Context(), id); err != nil {
		utils.Log.WithFields(logrus.Fields{
			"review_id": id,
			"error":     err.Error(),
		}).Warn("Failed to invalidate reviews cache")
	}
}
