// backend-go/internal/api/handlers/recommendation_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/reorderly/backend-go/internal/api/middleware"
	"github.com/reorderly/backend-go/internal/domain"
	"github.com/reorderly/backend-go/internal/service"
)

type RecommendationHandler struct {
	recService     *service.RecommendationService
	defaultHorizon int
}

func NewRecommendationHandler(recService *service.RecommendationService, defaultHorizon int) *RecommendationHandler {
	if defaultHorizon <= 0 {
		defaultHorizon = 30
	}

	return &RecommendationHandler{recService: recService, defaultHorizon: defaultHorizon}
}

// Compute handles a history upload and returns the ordered reorder report.
// Accepts CSV with columns: SKU, Date, UnitsSold, OnHand, LeadTimeDays and
// optionally MOQ, Cost. XLSX uploads are read from the first sheet.
func (h *RecommendationHandler) Compute(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	horizonDays := parsePositiveIntWithDefault(c.Query("horizon_days"), h.defaultHorizon)

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to open uploaded file")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer file.Close()

	recs, err := h.recService.ComputeFromUpload(c.Request.Context(), file, fileHeader.Filename, horizonDays)
	if err != nil {
		var missingErr *domain.MissingColumnsError
		if errors.As(err, &missingErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           missingErr.Error(),
				"missing_columns": missingErr.Columns,
			})
			return
		}

		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to compute recommendations")
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not decode uploaded file"})
		return
	}

	if identity, ok := middleware.CallerIdentity(c); ok {
		// Future extension point: store the report under identity.OrgID.
		log.Debug().
			Str("user_id", identity.UserID).
			Str("org_id", identity.OrgID).
			Int("recommendations", len(recs)).
			Msg("computed recommendations for authenticated caller")
	}

	c.JSON(http.StatusOK, recs)
}

func parsePositiveIntWithDefault(value string, fallback int) int {
	if fallback <= 0 {
		fallback = 30
	}
	if v, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && v > 0 {
		return v
	}
	return fallback
}
