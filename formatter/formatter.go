// Package formatter turns a spoken-equation transcript into LaTeX via a
// chat-completion endpoint.
package formatter

import (
	"context"
	"strings"
)

// latexPrefix is the marker the system prompt instructs the model to emit.
const latexPrefix = "LaTeX code: "

const systemPrompt = `You are a helpful assistant designed to convert spoken equations into LaTeX code.
When a user speaks a mathematical equation, transcribe it into a clean text form,
then convert the text into a valid LaTeX equation.
You shall only answer "LaTeX code: whatever code here", don't reply anything else or
any explanations.

For example:
If the user says "A is equal to tan inverse x", your task is to:
1. Transcribe the equation into a clean format: "A = tan^{-1}(x)"
2. Convert the transcribed equation into LaTeX code: "A = \tan^{-1}(x)"
3. Provide this LaTeX code as output.

Give the correct equations. Don't make mistakes like adding elements after carbon like hydrogen in glucose to subscript for example in chemical equations.

The LaTeX code should be formatted in the standard Latex form.`

type Formatter interface {
	Format(ctx context.Context, transcript string) (string, error)
}

// stripMarker removes one leading occurrence of the response marker.
// Responses without the marker (refusals, free-form answers) pass through
// verbatim.
func stripMarker(response string) string {
	return strings.TrimPrefix(response, latexPrefix)
}
