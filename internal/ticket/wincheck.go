package ticket

import "github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"

// Early-5 requires this many marked numbers anywhere on the ticket
const EarlyFiveCount = 5

// CheckWin reports whether the ticket satisfies the category given the set
// of called numbers. Pure: it reads nothing beyond its inputs.
func CheckWin(t domain.Ticket, called map[int]bool, category domain.Category) bool {
	switch category {
	case domain.CategoryEarly5:
		hits := 0
		for _, n := range t.Numbers() {
			if called[n] {
				hits++
				if hits >= EarlyFiveCount {
					return true
				}
			}
		}
		return false
	case domain.CategoryTopLine:
		return rowCovered(t, 0, called)
	case domain.CategoryMiddleLine:
		return rowCovered(t, 1, called)
	case domain.CategoryBottomLine:
		return rowCovered(t, 2, called)
	case domain.CategoryFullHouse:
		for _, n := range t.Numbers() {
			if !called[n] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func rowCovered(t domain.Ticket, row int, called map[int]bool) bool {
	for _, n := range t.RowNumbers(row) {
		if !called[n] {
			return false
		}
	}
	return true
}
