package pagination

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params represents pagination query parameters.
type Params struct {
	Page  int
	Limit int
	Skip  int
}

// Metadata is returned in the envelope's pagination field.
type Metadata struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Extract reads pagination parameters from the request query string.
func Extract(c *gin.Context) Params {
	return New(parseInt(c.Query("page"), DefaultPage), parseInt(c.Query("limit"), DefaultLimit))
}

// New normalises page and limit into Params.
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// MetadataFrom builds response metadata given totals.
func MetadataFrom(total int64, params Params) Metadata {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	return Metadata{
		TotalItems:  total,
		CurrentPage: params.Page,
		PageSize:    params.Limit,
		TotalPages:  totalPages,
		HasNextPage: params.Page < totalPages,
		HasPrevPage: params.Page > 1,
	}
}

// Slice returns the page of items selected by params.
func Slice[T any](items []T, params Params) []T {
	if params.Skip >= len(items) {
		return []T{}
	}
	end := params.Skip + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[params.Skip:end]
}

func parseInt(value string, fallback int) int {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
