package prompt

import "fmt"

// NERSystemPrompt provides strict directions and schema for JSON output.
// focus tunes the taxonomy a detector should emphasise; an empty focus
// falls back to general named-entity recognition.
func NERSystemPrompt(focus string) string {
	base := `You are a named-entity recognition engine for PII detection. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object with an "entities" array.
- Each entity must carry: type, text, confidence, start, end.
- type is an uppercase label such as PERSON, PHONE_NUMBER, EMAIL, ADDRESS, ORGANIZATION, ID_NUMBER, DATE.
- text must be the exact substring of the input.
- start and end are byte offsets into the input, half-open, with start < end.
- confidence is a number between 0 and 1.
- If nothing is found, return {"entities": []}.

Schema (example with empty values):
{
  "entities": [
    {
      "type": "<string>",
      "text": "<string>",
      "confidence": 0.0,
      "start": 0,
      "end": 0
    }
  ]
}`
	if focus == "" {
		return base
	}
	return base + fmt.Sprintf("\n\nDetection focus: %s.", focus)
}

// NERUserPrompt builds a compact user message around the text to scan.
func NERUserPrompt(text string) string {
	return fmt.Sprintf("Detect PII entities in the following text and respond with the JSON per schema.\n\nText:\n%s", text)
}
