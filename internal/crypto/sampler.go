package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyPool     = errors.New("character pool is empty")
	ErrInvalidLength = errors.New("password length must be positive")
)

// Sample builds a string of length characters, each drawn independently and
// uniformly from pool using bytes read from r.
func Sample(r io.Reader, pool string, length int) (string, error) {
	if pool == "" {
		return "", ErrEmptyPool
	}
	if length < 1 {
		return "", ErrInvalidLength
	}

	var sb strings.Builder
	sb.Grow(length)

	for i := 0; i < length; i++ {
		idx, err := UniformIndex(r, len(pool))
		if err != nil {
			return "", err
		}
		sb.WriteByte(pool[idx])
	}

	return sb.String(), nil
}

// UniformIndex returns an integer in [0, n) read from r.
// Words at or above the largest multiple of n below 2^32 are rejected so
// every index is equally likely.
func UniformIndex(r io.Reader, n int) (int, error) {
	if n < 1 || uint64(n) > 1<<32 {
		return 0, fmt.Errorf("uniform index: invalid range size %d", n)
	}

	size := uint64(n)
	limit := (uint64(1) << 32) / size * size

	var buf [4]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("reading entropy: %w", err)
		}

		x := uint64(binary.BigEndian.Uint32(buf[:]))
		if x < limit {
			return int(x % size), nil
		}
	}
}
