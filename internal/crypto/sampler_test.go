package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
)

// wordReader emits the given big-endian uint32 words, then io.EOF.
type wordReader struct {
	words []uint32
	buf   bytes.Buffer
}

func newWordReader(words ...uint32) *wordReader {
	r := &wordReader{words: words}
	for _, w := range words {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], w)
		r.buf.Write(b[:])
	}
	return r
}

func (r *wordReader) Read(p []byte) (int, error) {
	return r.buf.Read(p)
}

// counterReader emits 0, 1, 2, ... as big-endian uint32 words forever.
type counterReader struct {
	next uint32
	buf  [4]byte
	off  int
}

func (r *counterReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.off == 0 {
			binary.BigEndian.PutUint32(r.buf[:], r.next)
			r.next++
		}
		copied := copy(p[n:], r.buf[r.off:])
		n += copied
		r.off = (r.off + copied) % 4
	}
	return n, nil
}

func TestSample(t *testing.T) {
	tests := []struct {
		name    string
		pool    string
		length  int
		wantErr error
	}{
		{name: "lowercase pool", pool: LowercaseChars, length: 5},
		{name: "full pool", pool: BuildPool(AllClasses()), length: 16},
		{name: "single character pool", pool: "x", length: 8},
		{name: "length above form bound", pool: DigitChars, length: 256},
		{name: "length one", pool: SymbolChars, length: 1},
		{name: "empty pool", pool: "", length: 8, wantErr: ErrEmptyPool},
		{name: "zero length", pool: LowercaseChars, length: 0, wantErr: ErrInvalidLength},
		{name: "negative length", pool: LowercaseChars, length: -3, wantErr: ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sample(rand.Reader, tt.pool, tt.length)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Sample() error = %v, want %v", err, tt.wantErr)
				}
				if got != "" {
					t.Error("Sample() should return empty string on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("Sample() unexpected error: %v", err)
			}
			if len(got) != tt.length {
				t.Errorf("Sample() length = %d, want %d", len(got), tt.length)
			}
			for _, ch := range got {
				if !strings.ContainsRune(tt.pool, ch) {
					t.Errorf("Sample() produced %q which is not in pool %q", string(ch), tt.pool)
				}
			}
		})
	}
}

func TestSampleDeterministicWithScriptedReader(t *testing.T) {
	pool := BuildPool(Selection{Lowercase: true})

	got, err := Sample(&counterReader{}, pool, 5)
	if err != nil {
		t.Fatalf("Sample() unexpected error: %v", err)
	}
	if got != "abcde" {
		t.Errorf("Sample() = %q, want %q", got, "abcde")
	}
}

func TestSampleNeverIndexesPastPool(t *testing.T) {
	// 26 does not divide 2^32: the top words are rejected, and the word just
	// below the limit maps to the last valid index rather than len(pool).
	limit := uint32((uint64(1) << 32) / 26 * 26)
	r := newWordReader(0xFFFFFFFF, limit, limit-1)

	got, err := Sample(r, LowercaseChars, 1)
	if err != nil {
		t.Fatalf("Sample() unexpected error: %v", err)
	}
	if got != "z" {
		t.Errorf("Sample() = %q, want %q", got, "z")
	}
}

func TestSampleReaderError(t *testing.T) {
	r := newWordReader(1, 2)

	_, err := Sample(r, LowercaseChars, 3)
	if err == nil {
		t.Fatal("Sample() expected error when entropy is exhausted")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		t.Errorf("Sample() error = %v, want wrapped EOF", err)
	}
}

func TestUniformIndexCoversRange(t *testing.T) {
	const n = 74
	r := &counterReader{}
	seen := make([]int, n)

	for i := 0; i < n*4; i++ {
		idx, err := UniformIndex(r, n)
		if err != nil {
			t.Fatalf("UniformIndex() unexpected error: %v", err)
		}
		if idx < 0 || idx >= n {
			t.Fatalf("UniformIndex() = %d, out of [0, %d)", idx, n)
		}
		seen[idx]++
	}

	for idx, count := range seen {
		if count != 4 {
			t.Errorf("index %d drawn %d times, want 4", idx, count)
		}
	}
}

func TestUniformIndexInvalidRange(t *testing.T) {
	if _, err := UniformIndex(&counterReader{}, 0); err == nil {
		t.Error("UniformIndex() expected error for n = 0")
	}
}

func TestSampleProducesUniquePasswords(t *testing.T) {
	pool := BuildPool(AllClasses())
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		password, err := Sample(rand.Reader, pool, 16)
		if err != nil {
			t.Fatalf("Sample() unexpected error: %v", err)
		}
		if seen[password] {
			t.Errorf("duplicate password generated: %q", password)
		}
		seen[password] = true
	}
}
