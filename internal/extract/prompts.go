package extract

import (
	"fmt"
	"strings"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
)

const extractSystemPrompt = `You extract structured knowledge from study material.
Rules:
- Only report facts that are literally present in the given text excerpt.
- Every item must include "evidenceSnippets": exact quotes from the excerpt, each at most 200 characters.
- If you are not sure a fact is in the text, omit it. Omission is always better than guessing.
- Respond with a single JSON object and nothing else.`

// jsonShape describes the expected response object. Kept as one literal so
// prompt and parser stay in sync.
const jsonShape = `{
  "concepts": [{"term": "", "definition": "", "evidenceSnippets": [""]}],
  "formulas": [{"name": "", "latex": "", "meaning": "", "evidenceSnippets": [""]}],
  "procedures": [{"name": "", "steps": [""], "evidenceSnippets": [""]}],
  "workedExamples": [{"problem": "", "approach": "", "evidenceSnippets": [""]}],
  "exercises": [{"question": "", "points": "", "subtasks": [""], "evidenceSnippets": [""]}],
  "topics": [{"name": "", "evidenceSnippets": [""]}],
  "coverageNotes": [{"note": ""}]
}`

var docTypeInstructions = map[domain.DocumentType]string{
	domain.DocScript: `This is lecture script material. Focus on concepts (terms with their
definitions), formulas, procedures (named methods with steps), and the
topics the excerpt covers.`,
	domain.DocExercise: `This is an exercise sheet. Focus on the exercises themselves (question
text, point values, subtasks) and the topics they practice. Extract
concepts only when the sheet defines them explicitly.`,
	domain.DocSolution: `This is a solution document. Focus on worked examples (problem plus
solution approach) and procedures demonstrated in the solutions.`,
	domain.DocExam: `This is a past exam. Focus on the exam questions (text, point values,
subtasks) and the topics they test.`,
}

// BuildChunkPrompt assembles the user prompt for one chunk. The chunk
// position is included so the model does not treat a mid-document excerpt
// as the start of the material.
func BuildChunkPrompt(chunkText string, docType domain.DocumentType, chunkIndex, totalChunks int) string {
	var b strings.Builder
	instructions, ok := docTypeInstructions[docType]
	if !ok {
		instructions = docTypeInstructions[domain.DocScript]
	}
	b.WriteString(instructions)
	b.WriteString("\n\nRespond with JSON of this exact shape (omit empty arrays):\n")
	b.WriteString(jsonShape)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Text excerpt (part %d of %d):\n---\n", chunkIndex+1, totalChunks)
	b.WriteString(chunkText)
	b.WriteString("\n---\n")
	b.WriteString(`Use "coverageNotes" to report parts of the excerpt you could not analyze (diagrams, tables, corrupted text).`)
	return b.String()
}
