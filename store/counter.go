package store

import "strconv"

// FormatCounter encodes a counter the way redis and memcache store integers.
func FormatCounter(v uint64) []byte {
	return strconv.AppendUint(nil, v, 10)
}

// ParseCounter decodes a counter written by FormatCounter or a native INCR.
// Surrounding spaces are tolerated because memcache pads decremented values.
func ParseCounter(b []byte) (uint64, error) {
	i, j := 0, len(b)
	for i < j && b[i] == ' ' {
		i++
	}
	for j > i && b[j-1] == ' ' {
		j--
	}
	if i == j {
		return 0, ErrNotNumeric
	}
	v, err := strconv.ParseUint(string(b[i:j]), 10, 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	return v, nil
}
