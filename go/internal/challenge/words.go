package challenge

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

var (
	lowerWords = []string{"cheeseburger", "hotdog", "capitalize", "javascript"}
	mixedWords = []string{"Cheeseburger", "Hotdog", "Capitalize", "JavaScript"}
)

func randomWord(words []string) func(r *rand.Rand) string {
	return func(r *rand.Rand) string { return pick(r, words) }
}

func identity(s string) string { return s }

// wordQuestion builds the common shape: one word in, one deterministic answer out.
func wordQuestion(id, prompt string, points int, hint string, words []string, solve func(string) string) *Question[string] {
	return &Question[string]{
		ID:      id,
		Prompt:  prompt,
		Value:   points,
		HintURL: hint,
		Input:   randomWord(words),
		Render:  identity,
		Check:   func(answer, word string) bool { return answer == solve(word) },
		Solver:  func(args string) (string, error) { return solve(args), nil },
	}
}

var Uppercase = wordQuestion("uppercase", "Capitalize the word:", 2,
	"https://en.wikipedia.org/wiki/Letter_case", lowerWords, strings.ToUpper)

var Lowercase = wordQuestion("lowercase", "Lowercase the word:", 2,
	"https://en.wikipedia.org/wiki/Letter_case", mixedWords, strings.ToLower)

func countVowels(word string) int {
	n := 0
	for _, c := range strings.ToLower(word) {
		if strings.ContainsRune("aeiou", c) {
			n++
		}
	}
	return n
}

var Vowels = wordQuestion("vowels", "How many vowels are in the word:", 4,
	"a e i o u", lowerWords, func(w string) string { return strconv.Itoa(countVowels(w)) })

var Consonants = wordQuestion("consonants", "How many consonants are in the word:", 4,
	"b c d f g h j k l m n p q r s t v w x z", lowerWords,
	func(w string) string { return strconv.Itoa(len([]rune(w)) - countVowels(w)) })

var Numeronym = wordQuestion("numeronym",
	"What is the numerical contraction numeronym (e.g. accessibility -> a11y) for:", 4,
	"https://en.wikipedia.org/wiki/Numeronym#Numerical_contractions",
	[]string{
		"accessibility", "javascript", "internationalization", "hyperlink",
		"webpage", "kubernetes", "pseudopseudohypoparathyroidism",
	}, numeronym)

var RunLengthEncoding = wordQuestion("run-length-encoding",
	"What is the run length encoding (e.g. aabbc -> a2b2c1) of:", 10,
	"https://en.wikipedia.org/wiki/Run-length_encoding",
	[]string{
		"aaaaabbbbccccddddeee", "ssssuuuuuuppppppeeeerrrrr", "lllliiiiinnnneeee",
		"ttttrrrraaaaiiiinnnn", "pppaaappppeeerrrr", "mmmmooooonnnnlllliiiggghhhtttt",
		"fffflllliiiigggghhhtttt", "ccccoooommmpppuuutttteeerrr",
		"ppprrrooogggrrraaammmmmiiinnngggg", "bbbbbaaaallllllooooonnnn",
	}, runLengthEncode)

// mostCommonLetters returns every letter sharing the highest frequency, in
// order of first appearance.
func mostCommonLetters(word string) []string {
	counts := map[rune]int{}
	var order []rune
	best := 0
	for _, c := range word {
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
		best = max(best, counts[c])
	}
	var out []string
	for _, c := range order {
		if counts[c] == best {
			out = append(out, string(c))
		}
	}
	return out
}

var MostCommonLetter = &Question[string]{
	ID:      "most-common-letter",
	Prompt:  "What is the most common letter in the word:",
	Value:   4,
	HintURL: "https://en.wikipedia.org/wiki/Letter_frequency",
	Input:   randomWord(lowerWords),
	Render:  identity,
	Check: func(answer, word string) bool {
		// ties allow any of the leading letters
		for _, l := range mostCommonLetters(word) {
			if answer == l {
				return true
			}
		}
		return false
	},
	Solver: func(args string) (string, error) {
		letters := mostCommonLetters(args)
		if len(letters) == 0 {
			return "", nil
		}
		return letters[0], nil
	},
}

var BinaryToDecimal = &Question[string]{
	ID:      "binary-to-decimal",
	Prompt:  "What is the decimal value of the binary number:",
	Value:   2,
	HintURL: "https://en.wikipedia.org/wiki/Binary_number",
	Input: func(r *rand.Rand) string {
		return strconv.FormatInt(int64(r.IntN(256)), 2)
	},
	Render: identity,
	Check: func(answer, binary string) bool {
		n, err := strconv.ParseInt(binary, 2, 64)
		return err == nil && answer == strconv.FormatInt(n, 10)
	},
	Solver: func(args string) (string, error) {
		n, err := strconv.ParseInt(args, 2, 64)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	},
}

func wordListQuestion(id, prompt string, points int, hint string, lists [][]string, keep func(string) bool) *Question[[]string] {
	return &Question[[]string]{
		ID:      id,
		Prompt:  prompt,
		Value:   points,
		HintURL: hint,
		Input:   func(r *rand.Rand) []string { return pick(r, lists) },
		Render:  func(words []string) string { return strings.Join(words, ", ") },
		Check: func(answer string, words []string) bool {
			return sameWordSet(answer, filterWords(words, keep))
		},
		Solver: func(args string) (string, error) {
			return strings.Join(filterWords(splitList(args), keep), ", "), nil
		},
	}
}

var Palindromes = wordListQuestion("palindromes",
	"Which of these words are a palindrome (comma separated answer):", 5,
	"https://en.wikipedia.org/wiki/Palindrome",
	[][]string{
		{"racecar", "quizzify", "kayak", "flibbertigibbet", "rotator", "gobbledygook"},
		{"madam", "snollygoster", "civic", "bamboozle", "level", "kerfuffle"},
		{"deified", "hullabaloo", "bob", "whippersnapper", "refer", "flummox"},
	}, isPalindrome)

var Heterograms = wordListQuestion("heterograms",
	"Which of these words are heterograms (comma separated answer):", 5,
	"https://en.wikipedia.org/wiki/Heterogram_(literature)",
	[][]string{
		{"background", "palindrome", "cipher", "repeater", "juxtapose", "assessment"},
		{"authorizes", "moonwalker", "brightside", "bookkeeper", "mystique", "subdermatoglyphic"},
		{"computing", "rendezvous", "fjord", "encyclopedia", "sphinx", "mississippi"},
		{"puzzling", "algorithm", "vortex", "philosopher", "gymnast", "parallelogram"},
	}, isHeterogram)
