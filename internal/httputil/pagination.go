package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Listing endpoints default to pages of 50 and refuse anything above 100.
const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ParsePagination reads the offset and limit query parameters, applying the
// listing defaults when they are absent.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 1 || limit > maxListLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxListLimit)
	}

	return offset, limit, nil
}
