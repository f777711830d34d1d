package portfolio

import "strings"

// Method selects the cost-basis accounting convention used when replaying a
// trade history. The three methods only diverge once an asset has multiple
// lots at different unit costs.
type Method string

const (
	FIFO    Method = "fifo"
	LIFO    Method = "lifo"
	Average Method = "average"
)

// ParseMethod maps a stored method string to a Method. Unknown strings fall
// back to Average, the safe default (matching the behavior users already
// have when a settings file carries a stale value).
func ParseMethod(s string) Method {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case FIFO:
		return FIFO
	case LIFO:
		return LIFO
	case Average:
		return Average
	default:
		return Average
	}
}
