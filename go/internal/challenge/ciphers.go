package challenge

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
)

var morsePhrases = []string{
	"debug the code", "commit the changes", "push to repository",
	"pull request review", "merge conflict resolution", "deploy to production",
	"roll back deployment", "continuous integration pipeline", "write unit tests",
	"refactor the legacy",
}

var MorseDecode = &Question[string]{
	ID:      "morse-decode",
	Prompt:  "What is the decoded message from morse code (3 spaces = space):",
	Value:   10,
	HintURL: "https://en.wikipedia.org/wiki/Morse_code",
	Input:   func(r *rand.Rand) string { return encodeMorse(pick(r, morsePhrases)) },
	Render:  identity,
	Check:   func(answer, code string) bool { return answer == decodeMorse(code) },
	// Solve must not trim inner triple spaces; Question.Solve only trims the ends.
	Solver: func(args string) (string, error) { return decodeMorse(args), nil },
}

var caesarSentences = []string{
	"Programming: where 'It works on my machine' is enough.",
	"Debugging: seeking a needle that turns out to be hay.",
	"In programming, cache invalidation and naming are the hardest.",
	"Wanted to improve the world, but source code is classified.",
	"Programmers' favorite place? Loops. No exit in sight.",
	"Programmers like dark mode to keep the bugs away.",
	"Documentation is as real as unicorns in our world.",
	"Programming is magic. Just don't summon any demons.",
	"Weekends for programmers? Just code without meetings.",
	"It's not a bug; it's a feature yet to be documented.",
}

type caesarInput struct {
	Sentence string
	Shift    int
}

var CaesarDecode = &Question[caesarInput]{
	ID:      "caesar-decode",
	Prompt:  "Decode caesar-encoded sentence (preserve casing and punctuation):",
	Value:   20,
	HintURL: "https://en.wikipedia.org/wiki/Caesar_cipher",
	Input: func(r *rand.Rand) caesarInput {
		return caesarInput{Sentence: pick(r, caesarSentences), Shift: r.IntN(26)}
	},
	Render: func(in caesarInput) string {
		return "shift " + strconv.Itoa(in.Shift) + " sentence " + encodeCaesar(in.Sentence, in.Shift)
	},
	Check: func(answer string, in caesarInput) bool { return answer == in.Sentence },
	Solver: func(args string) (string, error) {
		rest, ok := strings.CutPrefix(args, "shift ")
		if !ok {
			return "", errors.New("missing shift")
		}
		shiftText, sentence, ok := strings.Cut(rest, " sentence ")
		if !ok {
			return "", errors.New("missing sentence")
		}
		shift, err := strconv.Atoi(shiftText)
		if err != nil {
			return "", err
		}
		return decodeCaesar(sentence, shift), nil
	},
}
