package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// One lucky number per whole ₹1000 of the grand total.
var luckyNumberUnit = decimal.NewFromInt(1000)

const (
	// luckyNumberDigits is the fixed width of issued numbers: "0000000".."9999999".
	luckyNumberDigits = 7
	luckyNumberSpace  = 10_000_000

	// maxDrawAttempts bounds the redraw loop per number. With a 10M space the
	// pool would have to be nearly exhausted for this to trip.
	maxDrawAttempts = 1000
)

// ErrLuckyPoolExhausted is returned when a number cannot be claimed within
// maxDrawAttempts draws.
var ErrLuckyPoolExhausted = errors.New("could not draw a unique lucky number")

// LuckyNumberCount returns floor(grandTotal / 1000), never negative. The
// preview endpoint reports it so clients can show the expected allocation
// before placing the order.
func LuckyNumberCount(grandTotal decimal.Decimal) int {
	n := grandTotal.Div(luckyNumberUnit).IntPart()
	if n < 0 {
		return 0
	}
	return int(n)
}

// LuckyDraw allocates globally unique 7-digit promotional numbers. Real
// uniqueness lives in the database constraint; the bloom filter only
// pre-screens draws so conflicts stay rare without loading the whole issued
// set per order.
type LuckyDraw struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	randFn func() int
}

// NewLuckyDraw creates an allocator sized for the full 10M number space.
func NewLuckyDraw() *LuckyDraw {
	return &LuckyDraw{
		filter: bloom.NewWithEstimates(luckyNumberSpace, 0.001),
		randFn: func() int { return rand.IntN(luckyNumberSpace) },
	}
}

// Seed records already-issued numbers in the pre-screen filter. Called once at
// startup with the persisted set.
func (d *LuckyDraw) Seed(numbers []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range numbers {
		d.filter.AddString(n)
	}
}

// Allocate draws count unique numbers and claims each through the repository.
// A claim rejected by the unique constraint triggers a redraw. Claimed rows
// belong to the order and are removed with it on compensation.
func (d *LuckyDraw) Allocate(ctx context.Context, repo Repository, orderID int64, userID uuid.UUID, count int) ([]string, error) {
	numbers := make([]string, 0, count)
	for range count {
		n, err := d.allocateOne(ctx, repo, orderID, userID)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func (d *LuckyDraw) allocateOne(ctx context.Context, repo Repository, orderID int64, userID uuid.UUID) (string, error) {
	for range maxDrawAttempts {
		candidate := d.draw()
		if candidate == "" {
			continue
		}

		inserted, err := repo.InsertLuckyNumber(ctx, orderID, userID, candidate)
		if err != nil {
			return "", errors.Wrap(err, "claim lucky number")
		}
		if inserted {
			return candidate, nil
		}
		// Issued by a concurrent order after our filter check. Remember it and
		// redraw.
		d.remember(candidate)
	}
	return "", ErrLuckyPoolExhausted
}

// draw returns a candidate that passed the pre-screen filter and marks it
// taken, or "" when the candidate was already seen.
func (d *LuckyDraw) draw() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	candidate := fmt.Sprintf("%0*d", luckyNumberDigits, d.randFn())
	if d.filter.TestString(candidate) {
		return ""
	}
	d.filter.AddString(candidate)
	return candidate
}

func (d *LuckyDraw) remember(n string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filter.AddString(n)
}
