// Package ticket generates and checks 90-ball tambola tickets.
package ticket

import (
	"math/rand"
	"sort"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// Generator produces valid 3x9 tambola tickets. It is deterministic for a
// given seeded rand source, which tests rely on. A Generator is not safe for
// concurrent use; callers own the rand source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator backed by the given rand source
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate produces one valid ticket: 15 distinct numbers, 5 per row,
// column-banded values, no empty column, ascending within each column.
func (g *Generator) Generate() domain.Ticket {
	occupied := g.pickColumns()
	g.rebalance(occupied)

	var t domain.Ticket
	for c := 0; c < domain.TicketCols; c++ {
		rows := make([]int, 0, domain.TicketRows)
		for r := 0; r < domain.TicketRows; r++ {
			if occupied[r][c] {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			continue
		}

		nums := g.drawColumn(c, len(rows))
		sort.Ints(nums)
		for i, r := range rows {
			t[r][c] = nums[i]
		}
	}
	return t
}

// pickColumns selects 5 distinct columns per row uniformly at random
func (g *Generator) pickColumns() *[domain.TicketRows][domain.TicketCols]bool {
	var occupied [domain.TicketRows][domain.TicketCols]bool
	for r := 0; r < domain.TicketRows; r++ {
		perm := g.rng.Perm(domain.TicketCols)
		for _, c := range perm[:domain.NumbersPerRow] {
			occupied[r][c] = true
		}
	}
	return &occupied
}

// rebalance moves row selections out of crowded columns until no column is
// empty. Donors are chosen from the fullest columns first so row counts stay
// at exactly 5.
func (g *Generator) rebalance(occupied *[domain.TicketRows][domain.TicketCols]bool) {
	counts := func() [domain.TicketCols]int {
		var n [domain.TicketCols]int
		for r := 0; r < domain.TicketRows; r++ {
			for c := 0; c < domain.TicketCols; c++ {
				if occupied[r][c] {
					n[c]++
				}
			}
		}
		return n
	}

	for {
		n := counts()
		empty := -1
		for c := 0; c < domain.TicketCols; c++ {
			if n[c] == 0 {
				empty = c
				break
			}
		}
		if empty == -1 {
			return
		}

		// Prefer the fullest donor column; any column with at least two
		// entries keeps its remaining occupant, so the move is always safe.
		donor, donorRow := -1, -1
		for want := domain.TicketRows; want >= 2 && donor == -1; want-- {
			for c := 0; c < domain.TicketCols && donor == -1; c++ {
				if n[c] != want {
					continue
				}
				for r := 0; r < domain.TicketRows; r++ {
					if occupied[r][c] && !occupied[r][empty] {
						donor, donorRow = c, r
						break
					}
				}
			}
		}

		occupied[donorRow][donor] = false
		occupied[donorRow][empty] = true
	}
}

// drawColumn draws count distinct numbers from the column's band
func (g *Generator) drawColumn(col, count int) []int {
	lo, hi := ColumnRange(col)
	span := hi - lo + 1
	picks := g.rng.Perm(span)[:count]
	nums := make([]int, count)
	for i, p := range picks {
		nums[i] = lo + p
	}
	return nums
}

// ColumnRange returns the inclusive value band of a ticket column:
// [10c+1, 10c+9] for columns 0-7 and [81, 90] for the last column.
func ColumnRange(col int) (lo, hi int) {
	lo = col*10 + 1
	hi = col*10 + 9
	if col == domain.TicketCols-1 {
		hi = domain.MaxCallableValue
	}
	return lo, hi
}

// Validate checks every structural rule of a tambola ticket: exactly 5
// non-zero entries per row, 15 distinct numbers overall, every value inside
// its column band, and no fully blank column.
func Validate(t domain.Ticket) bool {
	seen := make(map[int]bool, domain.TicketNumbers)
	total := 0

	for r := 0; r < domain.TicketRows; r++ {
		rowCount := 0
		for c := 0; c < domain.TicketCols; c++ {
			v := t[r][c]
			if v == 0 {
				continue
			}
			rowCount++
			total++
			if seen[v] {
				return false
			}
			seen[v] = true
			lo, hi := ColumnRange(c)
			if v < lo || v > hi {
				return false
			}
		}
		if rowCount != domain.NumbersPerRow {
			return false
		}
	}
	if total != domain.TicketNumbers {
		return false
	}

	for c := 0; c < domain.TicketCols; c++ {
		if t[0][c] == 0 && t[1][c] == 0 && t[2][c] == 0 {
			return false
		}
	}
	return true
}
