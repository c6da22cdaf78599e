package challenge

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var polishToken = regexp.MustCompile(`\(|\)|\+|-|\*|/|\d+`)

var errMalformedExpression = errors.New("malformed expression")

// evaluatePolish evaluates a prefix (polish) notation expression such as "* + 1 2 3".
func evaluatePolish(expr string) (float64, error) {
	tokens := polishToken.FindAllString(expr, -1)
	pos := 0

	var parse func() (float64, error)
	parse = func() (float64, error) {
		if pos >= len(tokens) {
			return 0, errMalformedExpression
		}
		tok := tokens[pos]
		pos++

		switch tok {
		case "+", "-", "*", "/":
			a, err := parse()
			if err != nil {
				return 0, err
			}
			b, err := parse()
			if err != nil {
				return 0, err
			}
			switch tok {
			case "+":
				return a + b, nil
			case "-":
				return a - b, nil
			case "*":
				return a * b, nil
			default:
				return a / b, nil
			}
		default:
			n, err := strconv.Atoi(tok)
			if err != nil {
				return 0, fmt.Errorf("%w: token %q", errMalformedExpression, tok)
			}
			return float64(n), nil
		}
	}

	v, err := parse()
	if err != nil {
		return 0, err
	}
	if pos != len(tokens) {
		return 0, fmt.Errorf("%w: trailing tokens", errMalformedExpression)
	}
	return v, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shiftRune(c rune, shift int) rune {
	lower := unicode.ToLower(c)
	idx := strings.IndexRune(alphabet, lower)
	if idx == -1 {
		return c
	}
	out := rune(alphabet[((idx+shift)%26+26)%26])
	if unicode.IsUpper(c) {
		return unicode.ToUpper(out)
	}
	return out
}

func encodeCaesar(text string, shift int) string {
	return strings.Map(func(c rune) rune { return shiftRune(c, shift) }, text)
}

func decodeCaesar(text string, shift int) string {
	return strings.Map(func(c rune) rune { return shiftRune(c, -shift) }, text)
}

var morseTable = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..", 'e': ".", 'f': "..-.",
	'g': "--.", 'h': "....", 'i': "..", 'j': ".---", 'k': "-.-", 'l': ".-..",
	'm': "--", 'n': "-.", 'o': "---", 'p': ".--.", 'q': "--.-", 'r': ".-.",
	's': "...", 't': "-", 'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-",
	'y': "-.--", 'z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
}

var morseReverse = func() map[string]rune {
	m := make(map[string]rune, len(morseTable))
	for k, v := range morseTable {
		m[v] = k
	}
	return m
}()

// encodeMorse separates letters with one space and words with three.
func encodeMorse(text string) string {
	words := strings.Fields(strings.ToLower(text))
	encoded := make([]string, 0, len(words))
	for _, w := range words {
		letters := make([]string, 0, len(w))
		for _, c := range w {
			if code, ok := morseTable[c]; ok {
				letters = append(letters, code)
			}
		}
		encoded = append(encoded, strings.Join(letters, " "))
	}
	return strings.Join(encoded, "   ")
}

func decodeMorse(code string) string {
	words := strings.Split(code, "   ")
	decoded := make([]string, 0, len(words))
	for _, w := range words {
		var b strings.Builder
		for _, letter := range strings.Fields(w) {
			if c, ok := morseReverse[letter]; ok {
				b.WriteRune(c)
			}
		}
		decoded = append(decoded, b.String())
	}
	return strings.Join(decoded, " ")
}

func isHappy(n int) bool {
	seen := map[int]bool{}
	for n != 1 && !seen[n] {
		seen[n] = true
		sum := 0
		for n > 0 {
			d := n % 10
			sum += d * d
			n /= 10
		}
		n = sum
	}
	return n == 1
}

// happyNumbers returns the first count happy (want=true) or unhappy numbers.
func happyNumbers(count int, want bool) []int {
	out := make([]int, 0, count)
	for n := 1; len(out) < count; n++ {
		if isHappy(n) == want {
			out = append(out, n)
		}
	}
	return out
}

func runLengthEncode(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		b.WriteRune(runes[i])
		b.WriteString(strconv.Itoa(j - i))
		i = j
	}
	return b.String()
}

func numeronym(word string) string {
	if len(word) < 3 {
		return word
	}
	return word[:1] + strconv.Itoa(len(word)-2) + word[len(word)-1:]
}

func isPalindrome(word string) bool {
	for i, j := 0, len(word)-1; i < j; i, j = i+1, j-1 {
		if word[i] != word[j] {
			return false
		}
	}
	return true
}

func isHeterogram(word string) bool {
	seen := map[rune]bool{}
	for _, c := range word {
		if seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func filterWords(words []string, keep func(string) bool) []string {
	var out []string
	for _, w := range words {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}

// sameWordSet compares a comma separated answer against the expected words,
// ignoring order and surrounding whitespace.
func sameWordSet(answer string, want []string) bool {
	got := map[string]bool{}
	for _, w := range strings.Split(answer, ",") {
		if w = strings.TrimSpace(w); w != "" {
			got[w] = true
		}
	}
	expected := map[string]bool{}
	for _, w := range want {
		expected[w] = true
	}
	if len(got) != len(expected) {
		return false
	}
	for w := range got {
		if !expected[w] {
			return false
		}
	}
	return true
}

func splitList(args string) []string {
	parts := strings.Split(args, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiList(parts []string) ([]int, error) {
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = n
	}
	return out, nil
}

func joinInts(nums []int, sep string) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, sep)
}
