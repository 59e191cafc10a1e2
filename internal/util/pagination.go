package util

import "strconv"

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Window clamps skip/limit query values to a safe offset and page size.
func Window(skip, limit int) (offset, size int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
