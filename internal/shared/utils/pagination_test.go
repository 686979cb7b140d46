package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
)

func contextWithQuery(rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	p := ParsePagination(contextWithQuery("page=0&page_size=1000"))
	assert.Equal(t, constants.DefaultPage, p.Page)
	assert.Equal(t, constants.MaxPageSize, p.PageSize)

	p = ParsePagination(contextWithQuery("page=3&page_size=abc"))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, constants.DefaultPageSize, p.PageSize)
	assert.Equal(t, 2*constants.DefaultPageSize, p.Offset())
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, ParseLimit(contextWithQuery(""), 50, 200))
	assert.Equal(t, 200, ParseLimit(contextWithQuery("limit=5000"), 50, 200))
	assert.Equal(t, 50, ParseLimit(contextWithQuery("limit=-1"), 50, 200))
	assert.Equal(t, 10, ParseLimit(contextWithQuery("limit=10"), 50, 200))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
}
