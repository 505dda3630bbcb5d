// Package classifier assigns a source-language label to a code snippet.
//
// This is a heuristic, not a parser. It evaluates an ORDERED list of
// pattern rules and returns the label of the first rule that matches.
// Order matters because the patterns are not mutually exclusive — a C++
// file can easily contain tokens that also look like Python or JavaScript,
// so the include directive is checked first and wins.
//
// Misclassification is expected and acceptable: the label only affects
// syntax highlighting and the wording of the explanation prompt.
package classifier

import (
	"regexp"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
)

// rule pairs one compiled pattern with the label it implies.
type rule struct {
	pattern *regexp.Regexp
	label   model.Language
}

// rules is the priority-ordered table. Evaluation stops at the first match,
// so earlier entries shadow later ones. Keeping the order in one slice
// (instead of a chain of if statements) makes the priority auditable and
// testable in isolation.
var rules = []rule{
	{regexp.MustCompile(`(?m)^\s*#include\s*<`), model.LangCPP},
	{regexp.MustCompile(`\busing\s+System\b|\bConsole\.WriteLine\b`), model.LangCSharp},
	{regexp.MustCompile(`\bpublic\s+class\b|\bSystem\.out\.println\b`), model.LangJava},
	{regexp.MustCompile(`\bdef\b|\bprint\s*\(|\brange\s*\(`), model.LangPython},
	{regexp.MustCompile(`\bconsole\.log\b|\bfunction\b|=>`), model.LangJavaScript},
}

// Classify returns the language label for the given code.
//
// It is deterministic, side-effect free, and total: every input gets a
// label, defaulting to LangUnknown when no rule matches. No confidence
// score, no multi-label output.
func Classify(code string) model.Language {
	for _, r := range rules {
		if r.pattern.MatchString(code) {
			return r.label
		}
	}
	return model.LangUnknown
}
