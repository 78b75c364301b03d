package ticket

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

func TestGenerate_AlwaysValid(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(1)))
	for i := 0; i < 1000; i++ {
		tk := gen.Generate()
		require.True(t, Validate(tk), "generated ticket failed validation: %v", tk)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(42))).Generate()
	b := NewGenerator(rand.New(rand.NewSource(42))).Generate()
	assert.Equal(t, a, b)

	c := NewGenerator(rand.New(rand.NewSource(43))).Generate()
	assert.NotEqual(t, a, c, "different seeds should almost surely differ")
}

func TestGenerate_ColumnsAscending(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		tk := gen.Generate()
		for c := 0; c < domain.TicketCols; c++ {
			prev := 0
			for r := 0; r < domain.TicketRows; r++ {
				if tk[r][c] == 0 {
					continue
				}
				assert.Greater(t, tk[r][c], prev, "column %d not ascending in %v", c, tk)
				prev = tk[r][c]
			}
		}
	}
}

func TestGenerate_FifteenDistinctNumbers(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(99)))
	tk := gen.Generate()

	nums := tk.Numbers()
	require.Len(t, nums, domain.TicketNumbers)

	seen := make(map[int]bool)
	for _, n := range nums {
		assert.False(t, seen[n], "duplicate %d", n)
		seen[n] = true
		assert.GreaterOrEqual(t, n, domain.MinCallableValue)
		assert.LessOrEqual(t, n, domain.MaxCallableValue)
	}
}

func TestValidate_RejectsBadTickets(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(3)))
	good := gen.Generate()
	require.True(t, Validate(good))

	t.Run("row with four numbers", func(t *testing.T) {
		bad := good
		// Blank one cell: its row drops to 4 numbers
	outer:
		for r := 0; r < domain.TicketRows; r++ {
			for c := 0; c < domain.TicketCols; c++ {
				if bad[r][c] != 0 {
					bad[r][c] = 0
					break outer
				}
			}
		}
		assert.False(t, Validate(bad))
	})

	t.Run("value outside column band", func(t *testing.T) {
		bad := good
	outer:
		for r := 0; r < domain.TicketRows; r++ {
			if bad[r][0] != 0 {
				bad[r][0] = 55 // column 0 only allows 1-9
				break outer
			}
		}
		assert.False(t, Validate(bad))
	})

	t.Run("duplicate number", func(t *testing.T) {
		bad := good
		var first int
		for c := 0; c < domain.TicketCols; c++ {
			if bad[0][c] != 0 {
				first = bad[0][c]
				break
			}
		}
		require.NotZero(t, first)
		// Planting the value elsewhere violates distinctness or the band rule
		bad[2][8] = first
		assert.False(t, Validate(bad))
	})

	t.Run("empty ticket", func(t *testing.T) {
		assert.False(t, Validate(domain.Ticket{}))
	})
}

func TestColumnRange(t *testing.T) {
	lo, hi := ColumnRange(0)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 9, hi)

	lo, hi = ColumnRange(4)
	assert.Equal(t, 41, lo)
	assert.Equal(t, 49, hi)

	lo, hi = ColumnRange(8)
	assert.Equal(t, 81, lo)
	assert.Equal(t, 90, hi)
}
