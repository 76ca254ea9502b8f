package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// Supported tokenizer names.
const (
	Tokenizer13a  = "13a"
	TokenizerChar = "char"
	TokenizerNone = "none"
)

// The 13a scheme is the mteval-v13a tokenization used for WMT-style
// comparability: unescape a handful of XML entities, then isolate
// punctuation, keeping digit-internal periods, commas and dashes attached.
var (
	punct13a     = regexp.MustCompile("([{-~[-` -&(-+:-@/])")
	prePeriod13a = regexp.MustCompile(`([^0-9])([.,])`)
	postPeriod13 = regexp.MustCompile(`([.,])([^0-9])`)
	digitDash13a = regexp.MustCompile(`([0-9])(-)`)
)

func tokenize13a(line string) []string {
	line = strings.ReplaceAll(line, "<skipped>", "")
	line = strings.ReplaceAll(line, "-\n", "")
	line = strings.ReplaceAll(line, "\n", " ")

	if strings.Contains(line, "&") {
		line = strings.ReplaceAll(line, "&quot;", `"`)
		line = strings.ReplaceAll(line, "&amp;", "&")
		line = strings.ReplaceAll(line, "&lt;", "<")
		line = strings.ReplaceAll(line, "&gt;", ">")
	}

	line = " " + line + " "
	line = punct13a.ReplaceAllString(line, " $1 ")
	line = prePeriod13a.ReplaceAllString(line, "$1 $2 ")
	line = postPeriod13.ReplaceAllString(line, " $1 $2")
	line = digitDash13a.ReplaceAllString(line, "$1 $2 ")

	return strings.Fields(line)
}

func tokenizeChar(line string) []string {
	runes := []rune(strings.TrimSpace(line))
	tokens := make([]string, 0, len(runes))
	for _, r := range runes {
		if r == ' ' {
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}

// tokenize splits a line according to the named scheme.
func tokenize(name, line string) ([]string, error) {
	switch name {
	case Tokenizer13a:
		return tokenize13a(line), nil
	case TokenizerChar:
		return tokenizeChar(line), nil
	case TokenizerNone:
		return strings.Fields(line), nil
	default:
		return nil, fmt.Errorf("unsupported tokenizer %q", name)
	}
}
