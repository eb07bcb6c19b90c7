package editor

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Op is the kind of a diff span.
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Span is a contiguous run of text with one Op. Start and End are byte
// offsets into the old text for OpDelete and into the new text otherwise.
type Span struct {
	Op    Op     `json:"op"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Granularity selects the diff token unit.
type Granularity int

const (
	// Words splits text into runs of letters and digits, runs of
	// whitespace, and single punctuation characters.
	Words Granularity = iota
	// Lines splits text after every newline.
	Lines
)

func (g Granularity) String() string {
	if g == Lines {
		return "lines"
	}
	return "words"
}

// ParseGranularity maps "lines" to Lines and anything else to Words.
func ParseGranularity(s string) Granularity {
	if strings.EqualFold(strings.TrimSpace(s), "lines") {
		return Lines
	}
	return Words
}

// maxCells bounds the LCS table. Inputs above it fall back to line tokens,
// then to a whole-text replacement.
const maxCells = 4_000_000

// Diff aligns before and after with a longest common subsequence and
// returns the spans needed to render the change. The result is fully
// deterministic: equal tokens are always matched as early as possible and,
// between two unchanged runs, removed text precedes inserted text.
func Diff(before, after string, g Granularity) []Span {
	if before == after {
		return []Span{{Op: OpEqual, Text: after, Start: 0, End: len(after)}}
	}

	a, b := tokenize(before, g), tokenize(after, g)
	ops, ok := align(a, b)
	if !ok && g == Words {
		a, b = tokenize(before, Lines), tokenize(after, Lines)
		ops, ok = align(a, b)
	}
	if !ok {
		return replaceAll(before, after)
	}
	return buildSpans(a, b, ops)
}

type step struct {
	op Op
	i  int // index into a for equal/delete
	j  int // index into b for equal/insert
}

// align returns the edit script from a to b. It reports false when the
// table would exceed maxCells.
func align(a, b []string) ([]step, bool) {
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}

	ra, rb := a[prefix:], b[prefix:]
	n, m := len(ra), len(rb)
	if int64(n+1)*int64(m+1) > maxCells {
		return nil, false
	}

	// lcs[i*(m+1)+j] is the LCS length of ra[i:] and rb[j:].
	w := m + 1
	lcs := make([]int32, (n+1)*w)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case ra[i] == rb[j]:
				lcs[i*w+j] = lcs[(i+1)*w+j+1] + 1
			case lcs[(i+1)*w+j] >= lcs[i*w+j+1]:
				lcs[i*w+j] = lcs[(i+1)*w+j]
			default:
				lcs[i*w+j] = lcs[i*w+j+1]
			}
		}
	}

	steps := make([]step, 0, prefix+n+m)
	for k := 0; k < prefix; k++ {
		steps = append(steps, step{op: OpEqual, i: k, j: k})
	}

	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && ra[i] == rb[j]:
			steps = append(steps, step{op: OpEqual, i: prefix + i, j: prefix + j})
			i++
			j++
		case j >= m || (i < n && lcs[(i+1)*w+j] >= lcs[i*w+j+1]):
			steps = append(steps, step{op: OpDelete, i: prefix + i, j: -1})
			i++
		default:
			steps = append(steps, step{op: OpInsert, i: -1, j: prefix + j})
			j++
		}
	}
	return steps, true
}

func buildSpans(a, b []string, steps []step) []Span {
	offA := offsets(a)
	offB := offsets(b)

	var spans []Span
	emit := func(op Op, text string, start int) {
		if text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Op == op {
			spans[n-1].Text += text
			spans[n-1].End += len(text)
			return
		}
		spans = append(spans, Span{Op: op, Text: text, Start: start, End: start + len(text)})
	}

	for k := 0; k < len(steps); {
		if steps[k].op == OpEqual {
			s := steps[k]
			emit(OpEqual, b[s.j], offB[s.j])
			k++
			continue
		}

		// Gather the whole changed run so deletions come before insertions.
		end := k
		for end < len(steps) && steps[end].op != OpEqual {
			end++
		}
		for _, s := range steps[k:end] {
			if s.op == OpDelete {
				emit(OpDelete, a[s.i], offA[s.i])
			}
		}
		for _, s := range steps[k:end] {
			if s.op == OpInsert {
				emit(OpInsert, b[s.j], offB[s.j])
			}
		}
		k = end
	}
	return spans
}

func replaceAll(before, after string) []Span {
	var spans []Span
	if before != "" {
		spans = append(spans, Span{Op: OpDelete, Text: before, Start: 0, End: len(before)})
	}
	if after != "" {
		spans = append(spans, Span{Op: OpInsert, Text: after, Start: 0, End: len(after)})
	}
	return spans
}

func offsets(tokens []string) []int {
	out := make([]int, len(tokens))
	pos := 0
	for i, t := range tokens {
		out[i] = pos
		pos += len(t)
	}
	return out
}

func tokenize(s string, g Granularity) []string {
	if s == "" {
		return nil
	}
	if g == Lines {
		parts := strings.SplitAfter(s, "\n")
		if parts[len(parts)-1] == "" {
			parts = parts[:len(parts)-1]
		}
		return parts
	}

	var tokens []string
	start := 0
	prev := classNone
	for i, r := range s {
		c := classify(r)
		if i > start && (c != prev || c == classPunct) {
			tokens = append(tokens, s[start:i])
			start = i
		}
		prev = c
	}
	return append(tokens, s[start:])
}

type runeClass int

const (
	classNone runeClass = iota
	classWord
	classSpace
	classPunct
)

func classify(r rune) runeClass {
	switch {
	case r == utf8.RuneError:
		return classPunct
	case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classPunct
	}
}
