package assistant

import "strings"

// Abstention is the exact sentence the answer prompt asks the model to use
// when the context does not cover the question.
const Abstention = "I don't have enough information to answer this question."

const summaryTemplate = "Write a concise summary of the following text:\n\n{text}\n\nCONCISE SUMMARY:"

const keyPointsTemplate = "Extract the 5 most important points from the following text:\n\n{text}\n\n" +
	"FORMAT: Return ONLY a numbered list of the 5 most important points, with each point separated by newlines."

const answerTemplate = "You are an AI assistant trained to answer questions based on the provided context. " +
	"Use the following context to answer the question.\n\n" +
	"Context:\n{context}\n\n" +
	"Question:\n{question}\n\n" +
	"Answer the question based only on the context provided. " +
	"If the context doesn't contain the answer, say \"" + Abstention + "\""

// render substitutes {name} placeholders in a single pass so that values
// containing brace sequences are inserted verbatim.
func render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
