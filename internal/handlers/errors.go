package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smarttrans/smarttrans-backend/internal/errs"
	"github.com/smarttrans/smarttrans-backend/internal/middleware"
)

// respondError writes err in the API's error shape. Internal causes go
// to the log, never to the client.
func respondError(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.KindInternal {
		middleware.Logger(c).Error("request failed", "path", c.FullPath(), "error", err)
	}
	middleware.WriteError(c, err)
}

// bindError reports a request body that failed binding.
func bindError(c *gin.Context, err error) {
	respondError(c, errs.InvalidInput(err.Error()))
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.InvalidInput("invalid " + name)
	}
	return uint(id), nil
}
