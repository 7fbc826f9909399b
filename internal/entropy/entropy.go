// Package entropy provides the random byte sources the local sampler reads
// from.
package entropy

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/tarm/serial"
)

const (
	SourceCrypto = "crypto"
	SourceSerial = "serial"
)

var ErrUnknownSource = errors.New("unknown entropy source")

// SerialConfig describes a hardware RNG attached to a serial port.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

// Source is an opened entropy source.
type Source struct {
	io.Reader
	Name   string
	closer io.Closer
}

// Close releases the underlying device, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open returns the named source. Serial sources are health checked before
// use and serialized behind a lock.
func Open(name string, sc SerialConfig) (*Source, error) {
	switch name {
	case "", SourceCrypto:
		return &Source{Reader: rand.Reader, Name: SourceCrypto}, nil
	case SourceSerial:
		return openSerial(sc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

func openSerial(sc SerialConfig) (*Source, error) {
	if sc.Device == "" {
		return nil, errors.New("serial entropy: device name is required")
	}
	if sc.Baud <= 0 {
		return nil, fmt.Errorf("serial entropy: invalid baud rate %d", sc.Baud)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        sc.Device,
		Baud:        sc.Baud,
		Size:        8,
		ReadTimeout: sc.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial entropy: %w", err)
	}

	if err := HealthCheck(port); err != nil {
		port.Close()
		return nil, err
	}
	slog.Info("serial entropy source ready", "device", sc.Device, "baud", sc.Baud)

	return &Source{Reader: NewLockedReader(port), Name: SourceSerial, closer: port}, nil
}

// LockedReader serializes Read calls on a shared reader.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r. A reader that is already locked is returned as is.
func NewLockedReader(r io.Reader) io.Reader {
	if r == nil {
		return nil
	}
	if _, ok := r.(*LockedReader); ok {
		return r
	}
	return &LockedReader{r: r}
}

func (lr *LockedReader) Read(p []byte) (int, error) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.r.Read(p)
}

const healthSampleBytes = 256

// HealthCheck reads a sample from r and rejects sources that are obviously
// broken: stuck on one byte value or producing too few distinct values.
// It cannot prove randomness.
func HealthCheck(r io.Reader) error {
	buf := make([]byte, healthSampleBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("entropy read failed: %w", err)
	}

	distinct := make(map[byte]struct{}, 256)
	for _, b := range buf {
		distinct[b] = struct{}{}
	}

	switch {
	case len(distinct) == 1:
		return errors.New("entropy source appears stuck (all sampled bytes identical)")
	case len(distinct) < 8:
		return fmt.Errorf("entropy sample has too few distinct byte values (%d)", len(distinct))
	}
	return nil
}
