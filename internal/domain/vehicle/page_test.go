package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageFirstOfThree(t *testing.T) {
	docs := make([]Doc, 10)
	p := NewPage(docs, 25, 1, 10)

	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrevPage)
	assert.True(t, p.HasNextPage)
	assert.Nil(t, p.PrevPage)
	if assert.NotNil(t, p.NextPage) {
		assert.Equal(t, 2, *p.NextPage)
	}
}

func TestNewPageLastOfThree(t *testing.T) {
	docs := make([]Doc, 5)
	p := NewPage(docs, 25, 3, 10)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrevPage)
	assert.False(t, p.HasNextPage)
	if assert.NotNil(t, p.PrevPage) {
		assert.Equal(t, 2, *p.PrevPage)
	}
	assert.Nil(t, p.NextPage)
	assert.Len(t, p.Docs, 5)
}

func TestNewPageOutOfRange(t *testing.T) {
	p := NewPage(nil, 25, 4, 10)

	assert.NotNil(t, p.Docs)
	assert.Empty(t, p.Docs)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrevPage)
	assert.False(t, p.HasNextPage)
}

func TestNewPageHugeLimit(t *testing.T) {
	docs := make([]Doc, 25)
	p := NewPage(docs, 25, 1, 1_000_000)

	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasPrevPage)
	assert.False(t, p.HasNextPage)
}

func TestNewPageExactFit(t *testing.T) {
	docs := make([]Doc, 10)
	p := NewPage(docs, 20, 2, 10)

	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.HasPrevPage)
	assert.False(t, p.HasNextPage)
}
