package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD calendar date as UTC midnight.
func parseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, raw, time.UTC)
}

// queryDateRange reads the optional startDate and endDate query parameters.
// A missing bound comes back as the zero time.
func queryDateRange(c *gin.Context) (from, to time.Time, ok bool) {
	for _, q := range []struct {
		name string
		dst  *time.Time
	}{{"startDate", &from}, {"endDate", &to}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: expected YYYY-MM-DD", q.name))
			return time.Time{}, time.Time{}, false
		}
		*q.dst = t
	}
	return from, to, true
}
