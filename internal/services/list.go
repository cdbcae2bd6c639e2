package services

import (
	"github.com/postbase/postbase/internal/query"
)

// PageInfo is the pagination metadata attached to list responses. Offset mode
// fills page/total/total_pages; cursor mode fills next_cursor.
type PageInfo struct {
	Mode       string `json:"mode"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size"`
	Total      int64  `json:"total,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func offsetPageInfo(intent query.QueryIntent, total int64) PageInfo {
	info := PageInfo{
		Mode:     string(query.ModeOffset),
		Page:     intent.Pagination.Page,
		PageSize: intent.Pagination.PageSize,
		Total:    total,
	}
	if info.PageSize > 0 {
		info.TotalPages = int((total + int64(info.PageSize) - 1) / int64(info.PageSize))
	}
	return info
}

func cursorPageInfo(intent query.QueryIntent, nextCursor string) PageInfo {
	return PageInfo{
		Mode:       string(query.ModeCursor),
		PageSize:   intent.Pagination.PageSize,
		NextCursor: nextCursor,
	}
}
