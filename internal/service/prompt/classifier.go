package prompt

import "strings"

// QueryKind tells the formatter whether the answer should be rendered as
// code or as prose.
type QueryKind string

const (
	KindCode QueryKind = "code"
	KindText QueryKind = "text"
)

// Known to misfire on prose that merely mentions a keyword ("api" in
// passing); the heuristic is kept as-is.
var codingKeywords = []string{
	"code", "python", "javascript", "java", "c++", "html", "css",
	"react", "sql", "write a program", "function", "syntax",
	"algorithm", "script", "json", "xml", "api", "backend", "frontend",
}

// Classify decides code vs. prose from the raw text prompt. It is a pure
// function: case-insensitive substring match against a fixed vocabulary,
// empty prompt classifies as text.
func Classify(text string) QueryKind {
	lower := strings.ToLower(text)
	for _, keyword := range codingKeywords {
		if strings.Contains(lower, keyword) {
			return KindCode
		}
	}
	return KindText
}
