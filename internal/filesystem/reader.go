package filesystem

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadLimited reads at most limit bytes of a file. exceeded reports that the
// file holds more than limit bytes; the returned data is then incomplete and
// must not be used as content.
func ReadLimited(path string, limit int64) (data []byte, exceeded bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// One byte past the limit tells an exact fit from an overflow. No file
	// can exceed MaxInt64 bytes, so that limit reads everything.
	n := limit + 1
	if limit == math.MaxInt64 {
		n = limit
	}
	data, err = io.ReadAll(io.LimitReader(f, n))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

// ParseSize parses size string (e.g., "650K", "1M") to bytes
func ParseSize(sizeStr string) (int64, error) {
	s := strings.TrimSpace(sizeStr)
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	// Get last character (unit)
	last := s[len(s)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		s = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		s = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	case 'B', 'b':
		s = s[:len(s)-1]
	}

	size, err := strconv.ParseInt(s, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("invalid size %q", sizeStr)
	}
	if size > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size %q is too large", sizeStr)
	}

	return size * multiplier, nil
}

// FormatSize renders a byte count the way ParseSize accepts it, when exact
func FormatSize(n int64) string {
	switch {
	case n >= 1<<30 && n%(1<<30) == 0:
		return strconv.FormatInt(n>>30, 10) + "G"
	case n >= 1<<20 && n%(1<<20) == 0:
		return strconv.FormatInt(n>>20, 10) + "M"
	case n >= 1<<10 && n%(1<<10) == 0:
		return strconv.FormatInt(n>>10, 10) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}
