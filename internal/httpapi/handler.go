package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/calendar"
	"github.com/username/workday-calendar/pkg/apperrors"
)

// CalendarService is the resolver surface the API exposes
type CalendarService interface {
	ResolveDate(ctx context.Context, raw string) calendar.DateInfo
	IsWorkday(ctx context.Context, raw string) calendar.WorkdayInfo
	UpcomingHolidays(ctx context.Context, limit int) []calendar.Holiday
	YearHolidays(ctx context.Context, year int) calendar.YearDataSet
}

// Handler serves calendar queries over HTTP
type Handler struct {
	service CalendarService
	logger  *zap.Logger
}

// NewHandler creates a new Handler
func NewHandler(service CalendarService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ResolveDate handles GET /v1/dates/:date
func (h *Handler) ResolveDate(c *gin.Context) {
	info := h.service.ResolveDate(c.Request.Context(), c.Param("date"))
	c.JSON(statusFor(info.Status), info)
}

// IsWorkday handles GET /v1/dates/:date/workday
func (h *Handler) IsWorkday(c *gin.Context) {
	info := h.service.IsWorkday(c.Request.Context(), c.Param("date"))
	c.JSON(statusFor(info.Status), info)
}

// UpcomingHolidays handles GET /v1/holidays/upcoming?limit=N
func (h *Handler) UpcomingHolidays(c *gin.Context) {
	limit := calendar.DefaultUpcomingLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Clone(apperrors.ErrInvalidFormat, "limit must be an integer"))
			return
		}
		limit = n
	}

	respondData(c, http.StatusOK, h.service.UpcomingHolidays(c.Request.Context(), limit))
}

// YearHolidays handles GET /v1/years/:year
func (h *Handler) YearHolidays(c *gin.Context) {
	raw := c.Param("year")
	year, err := strconv.Atoi(raw)
	if err != nil || len(raw) != 4 {
		respondError(c, apperrors.Clone(apperrors.ErrInvalidFormat, "year must be four digits"))
		return
	}

	data := h.service.YearHolidays(c.Request.Context(), year)
	if len(data) == 0 {
		respondError(c, apperrors.Clone(apperrors.ErrNotFound, "no calendar data for year "+raw))
		return
	}

	respondData(c, http.StatusOK, data)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func statusFor(status calendar.Status) int {
	if status == calendar.StatusInvalidInput {
		return http.StatusBadRequest
	}
	return http.StatusOK
}
