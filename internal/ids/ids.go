// Package ids generates the identifiers used across slidemaker tables.
//
// User IDs are short and sequential because they are shown in the UI and encoded
// into QR codes. Group, template and device identifiers are timestamp plus random
// suffix and skip any uniqueness scan.
package ids

import (
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	userIDPrefix      = "#AD"
	groupIDPrefix     = "GRP"
	templateIDPrefix  = "TMP"
	deviceTokenPrefix = "DEV"
	slideIDPrefix     = "slide_"
	commentIDPrefix   = "comment_"

	base36 = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Generator produces identifiers. The zero value is not usable; call New.
type Generator struct {
	now     func() time.Time
	entropy io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy overrides the random source.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// New creates a Generator backed by the wall clock and crypto/rand.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now, entropy: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// UserID returns the first unused "#ADnnnn" ID, counting from 1.
// Uniqueness holds only against the given snapshot of existing IDs.
func (g *Generator) UserID(existing []string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		taken[id] = struct{}{}
	}
	for n := 1; ; n++ {
		id := FormatUserID(n)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// FormatUserID renders a user counter as "#AD" plus at least four zero-padded digits.
func FormatUserID(n int) string {
	return fmt.Sprintf("%s%04d", userIDPrefix, n)
}

// GroupID returns "GRP<unix ms><5 uppercase base36>".
func (g *Generator) GroupID() string {
	return groupIDPrefix + g.millis() + strings.ToUpper(g.random(5))
}

// TemplateID returns "TMP<unix ms><5 uppercase base36>".
func (g *Generator) TemplateID() string {
	return templateIDPrefix + g.millis() + strings.ToUpper(g.random(5))
}

// DeviceToken returns "DEV<unix ms><16 base36>".
func (g *Generator) DeviceToken() string {
	return deviceTokenPrefix + g.millis() + g.random(16)
}

// SlideID returns "slide_<unix ms>_<9 base36>".
func (g *Generator) SlideID() string {
	return slideIDPrefix + g.millis() + "_" + g.random(9)
}

// CommentID returns "comment_<unix ms>_<9 base36>".
func (g *Generator) CommentID() string {
	return commentIDPrefix + g.millis() + "_" + g.random(9)
}

func (g *Generator) millis() string {
	return strconv.FormatInt(g.now().UnixMilli(), 10)
}

// random returns n base36 characters. A failing entropy source falls back to
// the clock so ID generation never fails.
func (g *Generator) random(n int) string {
	buf := make([]byte, n)
	if _, err := io.ReadFull(g.entropy, buf); err != nil {
		seed := uint64(g.now().UnixNano())
		for i := range buf {
			seed = seed*6364136223846793005 + 1442695040888963407
			buf[i] = byte(seed >> 33)
		}
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base36[int(b)%len(base36)]
	}
	return string(out)
}
