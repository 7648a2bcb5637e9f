package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetIDParam parses a numeric path parameter, e.g. "project_id".
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New("Missing " + name)
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetProjectID(ctx *gin.Context) (uint, error) {
	return GetIDParam(ctx, "project_id")
}

// GetPagination reads limit/offset query parameters with sane bounds.
func GetPagination(ctx *gin.Context) (limit int, offset int) {
	limit = 20
	offset = 0

	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	if o, err := strconv.Atoi(ctx.Query("offset")); err == nil && o >= 0 {
		offset = o
	}

	return limit, offset
}
