// Package challenge holds the catalog of machine-checkable quiz challenges and
// the round window used to pick one for a given round.
package challenge

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	// ErrNoChallenge is returned when a round window contains no definitions.
	ErrNoChallenge = errors.New("no challenge available for round")
	// ErrUnknownChallenge is returned when a text matches no definition.
	ErrUnknownChallenge = errors.New("unknown challenge")
)

// Definition is a catalog entry. Implementations are immutable and safe for
// concurrent use; all randomness comes from the caller's generator.
type Definition interface {
	Name() string
	Points() int
	Hint() string
	// Matches reports whether a challenge text was produced by this definition.
	Matches(text string) bool
	// Ask generates a random input and renders it into a Challenge.
	Ask(r *rand.Rand) Challenge
	// Solve answers a challenge text produced by this definition.
	Solve(text string) (string, error)
}

// Challenge is a rendered challenge bound to the input it was generated from.
type Challenge struct {
	Name   string
	Text   string
	Points int
	Hint   string
	verify func(answer string) bool
}

// Verify reports whether answer is correct for this challenge.
func (c Challenge) Verify(answer string) bool {
	if c.verify == nil {
		return false
	}
	return c.verify(answer)
}

// Question is a typed challenge definition. T is the random input type.
type Question[T any] struct {
	ID      string
	Prompt  string
	Value   int
	HintURL string

	Input  func(r *rand.Rand) T
	Render func(in T) string
	Check  func(answer string, in T) bool
	Solver func(args string) (string, error)
}

func (q *Question[T]) Name() string { return q.ID }
func (q *Question[T]) Points() int  { return q.Value }
func (q *Question[T]) Hint() string { return q.HintURL }

// RandomInput produces a fresh input value.
func (q *Question[T]) RandomInput(r *rand.Rand) T {
	return q.Input(r)
}

// Format renders the challenge text for an input.
func (q *Question[T]) Format(in T) string {
	return q.Prompt + " " + q.Render(in)
}

// Verify checks an answer against the input the challenge was rendered from.
func (q *Question[T]) Verify(answer string, in T) bool {
	return q.Check(answer, in)
}

func (q *Question[T]) Matches(text string) bool {
	return strings.HasPrefix(text, q.Prompt)
}

func (q *Question[T]) Ask(r *rand.Rand) Challenge {
	in := q.RandomInput(r)
	return Challenge{
		Name:   q.ID,
		Text:   q.Format(in),
		Points: q.Value,
		Hint:   q.Hint(),
		verify: func(answer string) bool { return q.Verify(answer, in) },
	}
}

func (q *Question[T]) Solve(text string) (string, error) {
	args, ok := strings.CutPrefix(text, q.Prompt)
	if !ok {
		return "", fmt.Errorf("%s: %w", q.ID, ErrUnknownChallenge)
	}
	return q.Solver(strings.TrimSpace(args))
}

// pick returns a uniformly random element of options.
func pick[T any](r *rand.Rand, options []T) T {
	return options[r.IntN(len(options))]
}
