package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/postbase/postbase/internal/query"
)

func TestOffsetPageInfo(t *testing.T) {
	intent := query.QueryIntent{
		Pagination: query.Pagination{Mode: query.ModeOffset, Page: 2, PageSize: 20},
	}

	info := offsetPageInfo(intent, 45)
	assert.Equal(t, "offset", info.Mode)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(45), info.Total)
	assert.Equal(t, 3, info.TotalPages)

	info = offsetPageInfo(intent, 0)
	assert.Equal(t, 0, info.TotalPages)

	info = offsetPageInfo(intent, 40)
	assert.Equal(t, 2, info.TotalPages)
}

func TestCursorPageInfo(t *testing.T) {
	intent := query.QueryIntent{
		Pagination: query.Pagination{Mode: query.ModeCursor, PageSize: 10},
	}

	info := cursorPageInfo(intent, "50")
	assert.Equal(t, "cursor", info.Mode)
	assert.Equal(t, 10, info.PageSize)
	assert.Equal(t, "50", info.NextCursor)
	assert.Zero(t, info.Page)
	assert.Zero(t, info.Total)
}
