package domain

// Ticket dimensions for 90-ball tambola
const (
	TicketRows       = 3
	TicketCols       = 9
	TicketNumbers    = 15
	NumbersPerRow    = 5
	MinCallableValue = 1
	MaxCallableValue = 90
)

// Ticket is a 3x9 tambola grid. Zero means a blank cell. The wire format is
// a 3-element array of 9-element integer arrays, which this type marshals to
// directly.
type Ticket [TicketRows][TicketCols]int

// Numbers returns the 15 non-zero entries in row-major order
func (t Ticket) Numbers() []int {
	nums := make([]int, 0, TicketNumbers)
	for r := 0; r < TicketRows; r++ {
		for c := 0; c < TicketCols; c++ {
			if t[r][c] != 0 {
				nums = append(nums, t[r][c])
			}
		}
	}
	return nums
}

// RowNumbers returns the non-zero entries of a single row
func (t Ticket) RowNumbers(row int) []int {
	nums := make([]int, 0, NumbersPerRow)
	for c := 0; c < TicketCols; c++ {
		if t[row][c] != 0 {
			nums = append(nums, t[row][c])
		}
	}
	return nums
}

// Contains reports whether n appears anywhere on the ticket
func (t Ticket) Contains(n int) bool {
	for r := 0; r < TicketRows; r++ {
		for c := 0; c < TicketCols; c++ {
			if t[r][c] == n {
				return true
			}
		}
	}
	return false
}
