package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewPagination 测试分页元数据计算
func TestNewPagination(t *testing.T) {
	// 15 条数据每页 10 条的第 2 页
	p := NewPagination(2, 10, 15)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 15, p.TotalItems)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrev)

	// 第 1 页
	p = NewPagination(1, 10, 15)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrev)

	// 空结果
	p = NewPagination(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

// TestNormalizePage 非法页码归一到默认值
func TestNormalizePage(t *testing.T) {
	page, size := NormalizePage(0, 0, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, size)

	page, size = NormalizePage(-3, -1, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = NormalizePage(3, 5, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, size)
}
