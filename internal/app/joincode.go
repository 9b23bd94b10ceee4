package app

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const (
	// JoinCodeAlphabet leaves out 0/O and 1/I so codes can be read off a projector.
	JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// JoinCodeLength is the number of characters in a join code.
	JoinCodeLength = 6

	maxJoinCodeAttempts = 10
)

// CodeSource produces candidate join codes.
type CodeSource interface {
	Generate() string
}

// CodeGenerator draws join codes uniformly from JoinCodeAlphabet.
// Codes are not secrets, so math/rand is sufficient.
type CodeGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCodeGenerator() *CodeGenerator {
	return NewCodeGeneratorWithSeed(time.Now().UnixNano())
}

// NewCodeGeneratorWithSeed is useful for reproducible codes in tests.
func NewCodeGeneratorWithSeed(seed int64) *CodeGenerator {
	return &CodeGenerator{rnd: rand.New(rand.NewSource(seed))}
}

func (g *CodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(JoinCodeLength)
	for i := 0; i < JoinCodeLength; i++ {
		b.WriteByte(JoinCodeAlphabet[g.rnd.Intn(len(JoinCodeAlphabet))])
	}
	return b.String()
}

// ValidJoinCode reports whether code has the right length and alphabet.
func ValidJoinCode(code string) bool {
	if len(code) != JoinCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(JoinCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// NormalizeJoinCode upper-cases user input before lookup.
func NormalizeJoinCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
