package challenge

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
)

func randomNumbers(r *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = r.IntN(10) + 1
	}
	return out
}

// polishSolver answers any challenge whose arguments are a prefix expression.
func polishSolver(args string) (string, error) {
	v, err := evaluatePolish(args)
	if err != nil {
		return "", err
	}
	return formatNumber(v), nil
}

const missingNumberLength = 9

var MissingNumber = &Question[int]{
	ID:     "missing-number",
	Prompt: "What number is missing from the sequence:",
	Value:  5,
	Input:  func(r *rand.Rand) int { return r.IntN(missingNumberLength) + 1 },
	Render: func(missing int) string {
		parts := make([]string, missingNumberLength)
		for i := range parts {
			if i+1 == missing {
				parts[i] = "?"
			} else {
				parts[i] = strconv.Itoa(i + 1)
			}
		}
		return strings.Join(parts, ", ")
	},
	Check: func(answer string, missing int) bool { return answer == strconv.Itoa(missing) },
	Solver: func(args string) (string, error) {
		parts := splitList(args)
		idx := slices.Index(parts, "?")
		if idx == -1 {
			return "", errors.New("no placeholder in sequence")
		}
		if idx > 0 {
			prev, err := strconv.Atoi(parts[idx-1])
			if err != nil {
				return "", err
			}
			return strconv.Itoa(prev + 1), nil
		}
		next, err := strconv.Atoi(parts[idx+1])
		if err != nil {
			return "", err
		}
		return strconv.Itoa(next - 1), nil
	},
}

type pair [2]int

func randomPair(r *rand.Rand) pair {
	return pair{r.IntN(100) + 1, r.IntN(100) + 1}
}

var AddTwo = &Question[pair]{
	ID:      "add-two",
	Prompt:  "Calculate the sum of:",
	Value:   5,
	HintURL: "https://en.wikipedia.org/wiki/Polish_notation",
	Input:   randomPair,
	Render:  func(p pair) string { return "+ " + joinInts(p[:], " ") },
	Check:   func(answer string, p pair) bool { return answer == strconv.Itoa(p[0]+p[1]) },
	Solver:  polishSolver,
}

var SubtractTwo = &Question[pair]{
	ID:      "subtract-two",
	Prompt:  "Calculate the difference (prefix polish notation) of:",
	Value:   5,
	HintURL: "https://en.wikipedia.org/wiki/Polish_notation",
	Input:   randomPair,
	Render:  func(p pair) string { return "- " + joinInts(p[:], " ") },
	Check:   func(answer string, p pair) bool { return answer == strconv.Itoa(p[0]-p[1]) },
	Solver:  polishSolver,
}

func product(nums []int) int {
	out := 1
	for _, n := range nums {
		out *= n
	}
	return out
}

var MultiplyMany = &Question[[]int]{
	ID:      "multiply-many",
	Prompt:  "Calculate the product (prefix polish notation) of:",
	Value:   10,
	HintURL: "https://en.wikipedia.org/wiki/Polish_notation",
	Input:   func(r *rand.Rand) []int { return randomNumbers(r, r.IntN(5)+1) },
	Render: func(nums []int) string {
		ops := strings.Repeat("* ", len(nums)-1)
		return ops + joinInts(nums, " ")
	},
	Check:  func(answer string, nums []int) bool { return answer == strconv.Itoa(product(nums)) },
	Solver: polishSolver,
}

func maxProductOfTwo(nums []int) int {
	sorted := slices.Clone(nums)
	slices.SortFunc(sorted, func(a, b int) int { return b - a })
	return sorted[0] * sorted[1]
}

var MaxProductOfTwo = &Question[[]int]{
	ID:      "max-product-of-two",
	Prompt:  "What is the maximum product of two numbers from the list:",
	Value:   10,
	HintURL: "https://en.wikipedia.org/wiki/Product_(mathematics)",
	Input:   func(r *rand.Rand) []int { return randomNumbers(r, 4) },
	Render:  func(nums []int) string { return joinInts(nums, ", ") },
	Check:   func(answer string, nums []int) bool { return answer == strconv.Itoa(maxProductOfTwo(nums)) },
	Solver: func(args string) (string, error) {
		nums, err := atoiList(splitList(args))
		if err != nil {
			return "", err
		}
		if len(nums) < 2 {
			return "", errors.New("need at least two numbers")
		}
		return strconv.Itoa(maxProductOfTwo(nums)), nil
	},
}

// expression is a prefix template with "$" placeholders and the numbers filling them.
type expression struct {
	Template string
	Numbers  []int
}

func (e expression) String() string {
	var b strings.Builder
	i := 0
	for _, c := range e.Template {
		if c == '$' && i < len(e.Numbers) {
			b.WriteString(strconv.Itoa(e.Numbers[i]))
			i++
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

var expressionTemplates = []string{"* + $ $ - $ $", "* - $ $ + $ $", "/ * $ $ + $ $"}

var PolishExpression = &Question[expression]{
	ID:      "polish-expression",
	Prompt:  "Calculate the result (prefix polish notation) of:",
	Value:   20,
	HintURL: "https://en.wikipedia.org/wiki/Polish_notation",
	Input: func(r *rand.Rand) expression {
		return expression{Template: pick(r, expressionTemplates), Numbers: randomNumbers(r, 4)}
	},
	Render: expression.String,
	Check: func(answer string, e expression) bool {
		want, err := evaluatePolish(e.String())
		if err != nil {
			return false
		}
		got, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err != nil {
			return false
		}
		// float answers from division are compared with a tolerance
		return math.Abs(want-got) < 0.001
	},
	Solver: polishSolver,
}

type happyInput struct {
	Happy   int
	Choices []int
}

var (
	happyPool   = happyNumbers(50, true)
	unhappyPool = happyNumbers(350, false)
)

var HappyNumber = &Question[happyInput]{
	ID:      "happy-number",
	Prompt:  "Which of these numbers is a happy number:",
	Value:   20,
	HintURL: "https://en.wikipedia.org/wiki/Happy_number",
	Input: func(r *rand.Rand) happyInput {
		happy := pick(r, happyPool)
		choices := make([]int, 0, 10)
		for _, idx := range r.Perm(len(unhappyPool))[:9] {
			choices = append(choices, unhappyPool[idx])
		}
		choices = slices.Insert(choices, r.IntN(len(choices)+1), happy)
		return happyInput{Happy: happy, Choices: choices}
	},
	Render: func(in happyInput) string { return joinInts(in.Choices, ", ") },
	Check:  func(answer string, in happyInput) bool { return answer == strconv.Itoa(in.Happy) },
	Solver: func(args string) (string, error) {
		nums, err := atoiList(splitList(args))
		if err != nil {
			return "", err
		}
		var happy []int
		for _, n := range nums {
			if isHappy(n) {
				happy = append(happy, n)
			}
		}
		return joinInts(happy, ", "), nil
	},
}
