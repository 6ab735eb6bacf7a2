package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prodsnap/prodsnap/models"
)

// Acquirer runs the acquisition state machine for one URL. It returns an
// error only when the URL itself is unusable; blocked pages come back as a
// structured outcome.
type Acquirer interface {
	Acquire(ctx context.Context, url string) (*models.StageOutcome, error)
}

// Acquire returns a handler for POST /api/v1/acquire.
//
// Contract: HTTP status reflects the request, not the target site. A missing
// or malformed URL is 400; everything else, including a fully blocked page,
// is 200 with OK=false and the per-stage steps map.
func Acquire(acq Acquirer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AcquireRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AcquireResponse{
				OK:     false,
				Images: []string{},
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		outcome, err := acq.Acquire(c.Request.Context(), req.URL)
		if err != nil {
			var aerr *models.AcquireError
			if !errors.As(err, &aerr) {
				aerr = models.NewAcquireError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(statusFor(aerr), models.AcquireResponse{
				OK:     false,
				Images: []string{},
				Error:  aerr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.FromOutcome(outcome))
	}
}

// statusFor translates error codes to HTTP status codes.
func statusFor(e *models.AcquireError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
