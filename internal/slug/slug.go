// Package slug mints the opaque tokens that address public notes.
package slug

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Length of generated slugs. With the 64-symbol URL alphabet collisions are
// not checked for.
const Length = 10

// Generator produces short, URL-safe, opaque tokens for public links.
type Generator interface {
	New() (string, error)
}

type nanoid struct{}

// NewGenerator returns the nanoid-backed generator.
func NewGenerator() Generator {
	return nanoid{}
}

func (nanoid) New() (string, error) {
	return gonanoid.New(Length)
}

// Func adapts a plain function to Generator.
type Func func() (string, error)

func (f Func) New() (string, error) { return f() }
