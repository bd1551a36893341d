package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/watchlist"
)

// Business codes carried in the response envelope
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success writes {"code":0,"data":data}
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {"code":code,"message":msg}
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// fail maps a usecase error to the envelope and aborts the request
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, watchlist.ErrInvalidTicker):
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusServiceUnavailable, CodeServerErr, err.Error())
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeServerErr, "storage error")
	}
	c.Abort()
}
