package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/metrics"
)

// NewRouter builds the API engine with its middleware chain
func NewRouter(service CalendarService, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(logger), Metrics(m), Recovery(logger))

	h := NewHandler(service, logger)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/v1")
	v1.GET("/dates/:date", h.ResolveDate)
	v1.GET("/dates/:date/workday", h.IsWorkday)
	v1.GET("/holidays/upcoming", h.UpcomingHolidays)
	v1.GET("/years/:year", h.YearHolidays)

	return r
}
