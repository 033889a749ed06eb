package youtube

import (
	"math"
	"strconv"
)

// ParseDuration converts an ISO-8601 duration such as "PT1H2M3S" to seconds.
// It never fails: digits that do not parse count as zero and unknown
// designators are skipped, so malformed input yields a partial or zero total.
// A term that would overflow int64, alone or added to the total, also counts
// as zero, so the result is never negative.
func ParseDuration(period string) int64 {
	var total int64
	start := 0

	for i := 0; i < len(period); i++ {
		c := period[i]
		if c >= '0' && c <= '9' {
			continue
		}

		var unit int64
		switch c {
		case 'H':
			unit = 60 * 60
		case 'M':
			unit = 60
		case 'S':
			unit = 1
		}
		if unit > 0 {
			n, err := strconv.ParseInt(period[start:i], 10, 64)
			if err != nil || n > math.MaxInt64/unit {
				n = 0
			}
			if term := n * unit; term <= math.MaxInt64-total {
				total += term
			}
		}
		start = i + 1
	}

	return total
}

// isZeroDuration reports whether period explicitly spells a zero length
func isZeroDuration(period string) bool {
	switch period {
	case "P0D", "PT0S", "PT0M", "PT0H", "P0DT0S":
		return true
	}
	return false
}
