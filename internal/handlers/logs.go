package handlers

import (
	"clariasense/internal/models"
	"clariasense/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid  = "invalid 'from' time; use RFC3339, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD"
	errToInvalid    = "invalid 'to' time; use RFC3339, YYYY-MM-DD HH:MM:SS or YYYY-MM-DD"
	errLimitInvalid = "invalid 'limit'; use a positive integer"
	errLoadLogs     = "failed to load logs"
	errCreateLog    = "failed to create log"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// parseLogFilter reads from/to/limit. On failure the 400 is already written.
func (h *Handler) parseLogFilter(c *gin.Context) (service.LogFilter, bool) {
	var (
		f   service.LogFilter
		err error
	)
	if qs := c.Query("from"); qs != "" {
		f.From, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return f, false
		}
	}
	// Date-only 'to' covers the whole day.
	if qs := c.Query("to"); qs != "" {
		f.To, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return f, false
		}
		if isDateOnly(qs) {
			f.To = f.To.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if qs := c.Query("limit"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return f, false
		}
		f.Limit = n
	}
	return f, true
}

// writeListError maps a list failure to 400 for a bad range, 500 otherwise.
func (h *Handler) writeListError(c *gin.Context, logKey string, err error, f service.LogFilter) {
	if errors.Is(err, service.ErrInvalidTimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, logKey, err, "from", f.From, "to", f.To, "limit", f.Limit)
}

// @Summary      List hourly logs
// @Description  Newest first, each with min/max per sensor (null when the series is empty). Filter by creation time. If 'to' is date-only, it is treated as end of day.
// @Tags         logs
// @Produce      json
// @Param        from   query     string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to     query     string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        limit  query     int     false  "Max rows (default 100, capped at 1000)"
// @Success      200    {object}  map[string]interface{}  "count, logs"
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/logs/hourly [get]
func (h *Handler) getHourlyLogs(c *gin.Context) {
	f, ok := h.parseLogFilter(c)
	if !ok {
		return
	}
	logs, err := h.services.ListHourlyLogs(c.Request.Context(), f)
	if err != nil {
		h.writeListError(c, "hourly_logs_list_failed", err, f)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(logs),
		"logs":  logs,
	})
}

// @Summary      List error logs
// @Description  Threshold violation records, newest first. Same filters as the hourly logs.
// @Tags         logs
// @Produce      json
// @Param        from   query     string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2025-08-01)
// @Param        to     query     string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        limit  query     int     false  "Max rows (default 100, capped at 1000)"
// @Success      200    {object}  map[string]interface{}  "count, logs"
// @Failure      400    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/logs/errors [get]
func (h *Handler) getErrorLogs(c *gin.Context) {
	f, ok := h.parseLogFilter(c)
	if !ok {
		return
	}
	logs, err := h.services.ListErrorLogs(c.Request.Context(), f)
	if err != nil {
		h.writeListError(c, "error_logs_list_failed", err, f)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(logs),
		"logs":  logs,
	})
}

// @Summary      Create error log
// @Description  Stores a violation record written by the rig and alerts subscribers. errorParameters must be drawn from ph, tds, temp.
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        body  body      models.ThresholdViolation  true  "Violation record"
// @Success      201   {object}  models.ThresholdViolation
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/error-logs [post]
// @Security     BearerAuth
func (h *Handler) postErrorLog(c *gin.Context) {
	var v models.ThresholdViolation
	if ok := h.bindJSONOrBadRequest(c, &v); !ok {
		return
	}
	v.ID = ""
	created, err := h.services.CreateErrorLog(c.Request.Context(), v)
	switch {
	case errors.Is(err, service.ErrInvalidErrorParameters):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errCreateLog, "error_log_create_failed", err, "device", deviceName(c))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// @Summary      Create hourly log
// @Tags         logs
// @Accept       json
// @Produce      json
// @Param        body  body      models.HourlyLog  true  "Hourly samples"
// @Success      201   {object}  models.HourlyLog
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/hourly-logs [post]
// @Security     BearerAuth
func (h *Handler) postHourlyLog(c *gin.Context) {
	var l models.HourlyLog
	if ok := h.bindJSONOrBadRequest(c, &l); !ok {
		return
	}
	l.ID = ""
	created, err := h.services.CreateHourlyLog(c.Request.Context(), l)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errCreateLog, "hourly_log_create_failed", err, "device", deviceName(c))
		return
	}
	c.JSON(http.StatusCreated, created)
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2025-08-27T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
