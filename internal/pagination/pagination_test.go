package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	SliceSource[int]
	counts int
	slices int
}

func (c *countingSource) Count(ctx context.Context) (int64, error) {
	c.counts++
	return c.SliceSource.Count(ctx)
}

func (c *countingSource) Slice(ctx context.Context, limit, offset int) ([]int, error) {
	c.slices++
	return c.SliceSource.Slice(ctx, limit, offset)
}

func seq(n int) SliceSource[int] {
	s := make(SliceSource[int], n)
	for i := range s {
		s[i] = i + 1
	}
	return s
}

func TestParsePageNumber(t *testing.T) {
	tests := map[string]int{
		"":    1,
		"0":   1,
		"-3":  1,
		"abc": 1,
		"1.5": 1,
		"2":   2,
		" 4 ": 4,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParsePageNumber(raw), "raw=%q", raw)
	}
}

func TestPaginate_ThirteenItems(t *testing.T) {
	ctx := context.Background()
	src := seq(13)

	p1, err := Paginate[int](ctx, src, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 10, p1.Len())
	assert.Equal(t, 1, p1.Number)
	assert.Equal(t, 2, p1.NumPages)
	assert.False(t, p1.HasPrevious())
	assert.True(t, p1.HasNext())
	assert.Equal(t, 2, p1.NextPageNumber())

	p2, err := Paginate[int](ctx, src, 10, "2")
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12, 13}, p2.ObjectList)
	assert.True(t, p2.HasPrevious())
	assert.False(t, p2.HasNext())
	assert.Equal(t, 1, p2.PreviousPageNumber())

	p3, err := Paginate[int](ctx, src, 10, "3")
	require.NoError(t, err)
	assert.Equal(t, p2.ObjectList, p3.ObjectList)
	assert.Equal(t, 2, p3.Number)
	assert.Equal(t, []int{1, 2}, p3.PageRange())
}

func TestPaginate_InvalidPageFallsBackToFirst(t *testing.T) {
	for _, raw := range []string{"0", "-1", "x"} {
		p, err := Paginate[int](context.Background(), seq(13), 10, raw)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, 1, p.ObjectList[0])
	}
}

func TestPaginate_Empty(t *testing.T) {
	src := &countingSource{SliceSource: seq(0)}
	p, err := Paginate[int](context.Background(), src, 10, "5")
	require.NoError(t, err)

	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.Empty(t, p.ObjectList)
	assert.False(t, p.HasOtherPages())
	assert.Equal(t, 0, src.slices)
}

func TestPaginate_OneCountOneSlice(t *testing.T) {
	src := &countingSource{SliceSource: seq(25)}
	_, err := Paginate[int](context.Background(), src, 10, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, src.counts)
	assert.Equal(t, 1, src.slices)
}

type failingSource struct{}

func (failingSource) Count(context.Context) (int64, error) { return 0, errors.New("boom") }
func (failingSource) Slice(context.Context, int, int) ([]int, error) {
	return nil, errors.New("boom")
}

func TestPaginate_PropagatesErrors(t *testing.T) {
	_, err := Paginate[int](context.Background(), failingSource{}, 10, "1")
	assert.Error(t, err)
}
