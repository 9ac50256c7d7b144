package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// claimRecorder implements just the lucky-number slice of Repository.
type claimRecorder struct {
	Repository

	rejectFirstN int
	calls        int
	claimed      []string
	err          error
}

func (r *claimRecorder) InsertLuckyNumber(_ context.Context, _ int64, _ uuid.UUID, number string) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	if r.calls <= r.rejectFirstN {
		return false, nil
	}
	r.claimed = append(r.claimed, number)
	return true, nil
}

func TestLuckyNumberCount(t *testing.T) {
	cases := []struct {
		total string
		want  int
	}{
		{"0", 0},
		{"999.99", 0},
		{"1000", 1},
		{"1090", 1},
		{"1999.99", 1},
		{"2000", 2},
		{"2142", 2},
		{"10500.50", 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LuckyNumberCount(dec(tc.total)), "total %s", tc.total)
	}
}

func TestAllocate_UniqueSevenDigit(t *testing.T) {
	repo := &claimRecorder{}
	draw := NewLuckyDraw()

	numbers, err := draw.Allocate(context.Background(), repo, 1, uuid.New(), 5)
	require.NoError(t, err)
	require.Len(t, numbers, 5)

	seen := make(map[string]struct{})
	for _, n := range numbers {
		assert.Len(t, n, 7)
		_, dup := seen[n]
		assert.False(t, dup, "duplicate %s in one allocation", n)
		seen[n] = struct{}{}
	}
	assert.Equal(t, numbers, repo.claimed)
}

func TestAllocate_RedrawsOnConstraintConflict(t *testing.T) {
	// The first claim loses to a concurrent order; the allocator must redraw
	// rather than fail or return the rejected number.
	repo := &claimRecorder{rejectFirstN: 1}
	draw := NewLuckyDraw()

	numbers, err := draw.Allocate(context.Background(), repo, 1, uuid.New(), 1)
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, []string{numbers[0]}, repo.claimed)
}

func TestAllocate_PoolExhausted(t *testing.T) {
	repo := &claimRecorder{rejectFirstN: maxDrawAttempts + 1}
	draw := NewLuckyDraw()
	// Force every draw to the same candidate so the filter cannot absorb the
	// rejections.
	draw.randFn = func() int { return 1234567 }

	_, err := draw.Allocate(context.Background(), repo, 1, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrLuckyPoolExhausted)
}

func TestAllocate_RepoErrorPropagates(t *testing.T) {
	repo := &claimRecorder{err: assert.AnError}
	draw := NewLuckyDraw()

	_, err := draw.Allocate(context.Background(), repo, 1, uuid.New(), 1)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestSeed_PreScreensIssuedNumbers(t *testing.T) {
	repo := &claimRecorder{}
	draw := NewLuckyDraw()
	draw.Seed([]string{"0000042"})
	draw.randFn = func() int { return 42 }

	// Every candidate collides with the seeded number, so no claim ever
	// reaches the repository.
	_, err := draw.Allocate(context.Background(), repo, 1, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrLuckyPoolExhausted)
	assert.Zero(t, repo.calls)
}
