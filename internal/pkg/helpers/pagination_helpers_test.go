package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, uint64(20), limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(45), info.TotalItems)

	info = NewPaginationInfo(45, 9, 20)
	assert.Equal(t, 3, info.CurrentPage)

	info = NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, info.TotalPages)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 20, 100))
	assert.Equal(t, 5, ClampPage(7, 20, 100))
	assert.Equal(t, 2, ClampPage(2, 20, 100))
	assert.Equal(t, 1, ClampPage(3, 20, 0))
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query      string
		page, size int
	}{
		{"", 1, 20},
		{"?page=3&size=50", 3, 50},
		{"?page=-1&size=1000", 1, 20},
		{"?page=abc&size=x", 1, 20},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/students"+tt.query, nil)
		page, size := ParsePaginationParams(c, 20)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.size, size, tt.query)
	}
}
