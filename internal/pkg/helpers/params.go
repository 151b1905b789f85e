package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementcell/internal/middleware"
)

// ParseIDParam reads a positive int64 path parameter, writing a 400 and
// returning false when it is malformed
func ParseIDParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondBadRequest(c, "Invalid "+label+" ID", label+" ID must be a positive number")
		return 0, false
	}
	return id, true
}

// OptionalIDQuery reads an optional positive int64 query parameter
func OptionalIDQuery(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondBadRequest(c, "Invalid "+name, name+" must be a positive number")
		return nil, false
	}
	return &id, true
}
