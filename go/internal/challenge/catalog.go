package challenge

import (
	"fmt"

	"github.com/mcdev12/quizrunner/go/internal/models"
)

// Catalog is an ordered list of definitions. Order matters: the round window
// walks it from easy to hard.
type Catalog []Definition

// Full is every challenge, roughly ordered by difficulty.
var Full = Catalog{
	Uppercase,
	Lowercase,
	Vowels,
	Consonants,
	BinaryToDecimal,
	MostCommonLetter,
	Palindromes,
	Heterograms,
	Numeronym,
	MissingNumber,
	AddTwo,
	SubtractTwo,
	MultiplyMany,
	MaxProductOfTwo,
	RunLengthEncoding,
	MorseDecode,
	PolishExpression,
	CaesarDecode,
	HappyNumber,
}

// Demo is the small warm-up subset.
var Demo = Catalog{Uppercase, Lowercase, Vowels}

// ForMode returns the catalog eligible for a game mode.
func ForMode(mode models.GameMode) Catalog {
	if mode == models.GameModeFull {
		return Full
	}
	return Demo
}

// MaxRounds is the highest round the game can be advanced to.
func MaxRounds() int {
	return len(Full) / 2
}

// Identify finds the definition a challenge text belongs to.
func (c Catalog) Identify(text string) (Definition, error) {
	for _, def := range c {
		if def.Matches(text) {
			return def, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", text, ErrUnknownChallenge)
}

// Solve answers a challenge text using whichever definition produced it.
func (c Catalog) Solve(text string) (string, error) {
	def, err := c.Identify(text)
	if err != nil {
		return "", err
	}
	return def.Solve(text)
}
