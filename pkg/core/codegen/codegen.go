// Package codegen produces random short codes.
package codegen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the set short codes are drawn from: ASCII letters and digits,
// case-sensitive, minus the look-alikes 0 O o 1 l I. 56 symbols.
const Alphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// Generator draws codes from crypto/rand. It holds no state, so output is
// unpredictable across calls and restarts.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// Generate returns length symbols chosen uniformly from Alphabet. It knows
// nothing about existing codes; callers handle collisions. A non-positive
// length is a programming error and panics.
func (g *Generator) Generate(length int) string {
	if length <= 0 {
		panic(fmt.Sprintf("codegen: length must be positive, got %d", length))
	}

	max := big.NewInt(int64(len(Alphabet)))
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("codegen: reading random source: %v", err))
		}
		b[i] = Alphabet[num.Int64()]
	}
	return string(b)
}

// Valid reports whether code is non-empty and uses only Alphabet symbols.
func Valid(code string) bool {
	if code == "" {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !inAlphabet(code[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	for i := 0; i < len(Alphabet); i++ {
		if Alphabet[i] == c {
			return true
		}
	}
	return false
}
