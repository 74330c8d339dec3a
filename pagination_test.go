package blog_test

import (
	"testing"

	blog "github.com/goliatone/go-blog"
	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		perPage   int
		total     int
		wantPages int
	}{
		{name: "Exact fit", page: 1, perPage: 5, total: 10, wantPages: 2},
		{name: "Partial last page", page: 1, perPage: 5, total: 11, wantPages: 3},
		{name: "Empty listing", page: 1, perPage: 5, total: 0, wantPages: 0},
		{name: "Single item", page: 1, perPage: 5, total: 1, wantPages: 1},
		{name: "Zero per page", page: 1, perPage: 0, total: 10, wantPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := blog.NewPage([]string{}, tt.page, tt.perPage, tt.total)
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPageNavigation(t *testing.T) {
	middle := blog.NewPage([]int{1, 2, 3}, 2, 3, 9) // pages 1..3

	assert.True(t, middle.HasPrev())
	assert.True(t, middle.HasNext())
	assert.Equal(t, 1, middle.PrevPage())
	assert.Equal(t, 3, middle.NextPage())

	first := blog.NewPage([]int{1, 2, 3}, 1, 3, 9)
	assert.False(t, first.HasPrev())
	assert.Equal(t, 1, first.PrevPage())
	assert.Equal(t, 2, first.NextPage())

	last := blog.NewPage([]int{7, 8, 9}, 3, 3, 9)
	assert.False(t, last.HasNext())
	assert.Equal(t, 3, last.NextPage())
	assert.Equal(t, 2, last.PrevPage())
}

func TestNormalizePageWindow(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{name: "Valid window passes through", page: 3, perPage: 10, wantPage: 3, wantPerPage: 10},
		{name: "Zero page clamps to first", page: 0, perPage: 10, wantPage: 1, wantPerPage: 10},
		{name: "Negative page clamps to first", page: -4, perPage: 10, wantPage: 1, wantPerPage: 10},
		{name: "Zero per page gets default", page: 1, perPage: 0, wantPage: 1, wantPerPage: blog.DefaultPerPage},
		{name: "Oversized per page gets capped", page: 1, perPage: 500, wantPage: 1, wantPerPage: blog.MaxPerPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := blog.NormalizePageWindow(tt.page, tt.perPage)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}
