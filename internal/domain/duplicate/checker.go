// Package duplicate tracks repeated submissions of the same photo. A report
// whose image fingerprint has been seen before is penalized in proportion to
// how many times it resurfaced.
package duplicate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Sighting describes the prior history of one image fingerprint.
type Sighting struct {
	Found   bool    `json:"found"`
	Count   int     `json:"count"`
	Penalty float64 `json:"penalty"`
}

// Checker defines the behaviour required by the analysis engine.
type Checker interface {
	Check(ctx context.Context, fingerprint string) (Sighting, error)
	Record(ctx context.Context, fingerprint string) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level checker selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// New selects a checker implementation by driver name. An empty driver
// resolves to noop so duplicate tracking stays opt-in.
func New(cfg Config) (Checker, error) {
	switch cfg.Driver {
	case "", "noop":
		return NewNoop(), nil
	case "memory":
		return NewMemory(cfg), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unknown duplicate driver: %s", cfg.Driver)
	}
}

// Fingerprint derives the stable content identity of an upload.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// penaltyFor maps the prior sighting count to a trust deduction, capped so
// a heavily reposted photo cannot zero out the forensic evidence entirely.
func penaltyFor(count int) float64 {
	penalty := float64(count) * 5
	if penalty > 30 {
		penalty = 30
	}
	return penalty
}

type noopChecker struct{}

// NewNoop constructs a checker that never reports a duplicate.
func NewNoop() Checker {
	return noopChecker{}
}

func (noopChecker) Check(context.Context, string) (Sighting, error) {
	return Sighting{}, nil
}

func (noopChecker) Record(context.Context, string) error { return nil }

func (noopChecker) Stats(context.Context) (map[string]any, error) {
	return map[string]any{"type": "noop"}, nil
}

func (noopChecker) Close(context.Context) error { return nil }
