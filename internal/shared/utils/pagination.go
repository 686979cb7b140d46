package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
)

// Pagination is a page request for offset-paged lists (requests, ratings).
type Pagination struct {
	Page     int
	PageSize int
}

// Offset is the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParsePagination reads page and page_size, falling back to the defaults on
// missing or non-positive values and capping the size.
func ParsePagination(c *gin.Context) Pagination {
	p := Pagination{
		Page:     queryInt(c, "page", constants.DefaultPage),
		PageSize: queryInt(c, "page_size", constants.DefaultPageSize),
	}
	if p.PageSize > constants.MaxPageSize {
		p.PageSize = constants.MaxPageSize
	}
	return p
}

// ParseLimit reads the limit of a cursor-paged list such as chat history.
func ParseLimit(c *gin.Context, def, max int) int {
	return min(queryInt(c, "limit", def), max)
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// TotalPages is at least 1 so an empty list still reports one page.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
