package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asakatsu/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// parseHistoryDays 读取 ?days=，缺省时使用 fallback，范围 1..MaxHistoryDays
func parseHistoryDays(c *gin.Context, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query("days"))
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > MaxHistoryDays {
		return 0, false
	}
	return days, true
}

// attendanceStatus 将服务层错误映射为 HTTP 状态码与文案键
func attendanceStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrWrongAnswer):
		return http.StatusUnprocessableEntity, msgWrongAnswer
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, msgInvalidInput
	case errors.Is(err, service.ErrTitleNotFound):
		return http.StatusNotFound, msgTitleNotFound
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, msgStorageUnavailable
	default:
		return http.StatusInternalServerError, msgOperationFailed
	}
}

func (a *API) handleAttendanceError(c *gin.Context, err error) {
	status, key := attendanceStatus(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	respondError(c, status, a.text(c, key))
}
