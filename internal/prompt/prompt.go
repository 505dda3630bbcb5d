// Package prompt builds the instruction text sent to explanation providers.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Vaishh-Aryaa/CodeInsight/internal/model"
)

// Build produces the tutor instruction for the given code and detected
// language. Deterministic and pure: same inputs, same output.
//
// The prompt states the detected language, embeds the raw code verbatim in
// a fenced block, and mandates a fixed Markdown structure (Language,
// Overview, Step-by-step Logic, Output, Notes) so every provider returns
// the same shape of answer. The code is user-owned text that is never
// executed, so it is embedded without sanitization.
func Build(code string, lang model.Language) string {
	var b strings.Builder

	b.WriteString("You are a coding tutor.\n\n")
	fmt.Fprintf(&b, "Explain the following %s code in Markdown format.\n\n", lang)
	b.WriteString("### Format strictly like this:\n\n")
	fmt.Fprintf(&b, "## Language\n%s\n\n", lang)
	b.WriteString("## Overview\n- What this code does\n\n")
	b.WriteString("## Step-by-step Logic\n- Explain clearly\n\n")
	b.WriteString("## Output\n- What will happen when run\n\n")
	b.WriteString("## Notes\n- Any important points\n\n")
	fmt.Fprintf(&b, "Code:\n```\n%s\n```\n", code)

	return b.String()
}
