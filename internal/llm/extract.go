package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Models are instructed to return pure JSON, but in practice wrap it in
// fence markers or surround it with prose. The extractors below recover a
// structured object from that text or, for evaluation replies, degrade to
// safe fallback values instead of failing.

const feedbackPrefixLen = 500

// FlexScore decodes a score that may arrive as a JSON number or a
// numeric string
type FlexScore float64

// UnmarshalJSON implements json.Unmarshaler
func (s *FlexScore) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = FlexScore(f)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("score is not numeric: %q", str)
		}
		*s = FlexScore(f)
		return nil
	}

	return fmt.Errorf("score has unsupported JSON type")
}

// StringList decodes a field that may arrive as a single string or as a
// list of strings
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = []string{single}
		return nil
	}

	return fmt.Errorf("expected string or list of strings")
}

// ExtractedEvaluation is the structured mapping recovered from an
// evaluation reply. Degraded marks a reply whose body could not be parsed;
// the remaining fields then carry fallback values and the record is still
// safe to persist.
type ExtractedEvaluation struct {
	Score      FlexScore  `json:"score"`
	Strengths  StringList `json:"strengths"`
	Weaknesses StringList `json:"weaknesses"`
	Feedback   string     `json:"mentor_feedback"`
	Degraded   bool       `json:"-"`
}

// GeneratedTask is the structured mapping recovered from a task
// generation reply
type GeneratedTask struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements StringList `json:"requirements"`
}

// ParseEvaluation recovers an evaluation from raw model output. It never
// fails: an unparseable body yields a degraded result with a mid-range
// score and the raw text prefix as feedback.
func ParseEvaluation(raw string) ExtractedEvaluation {
	body := stripFences(raw)

	// Pre-seed the score so a reply that omits the key lands on the
	// same mid-range default as an unparseable one
	ev := ExtractedEvaluation{Score: 50}
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return ExtractedEvaluation{
			Score:      50,
			Strengths:  StringList{"Submission received"},
			Weaknesses: StringList{"Could not parse evaluation"},
			Feedback:   truncate(raw, feedbackPrefixLen),
			Degraded:   true,
		}
	}

	if ev.Feedback == "" {
		ev.Feedback = "Evaluation complete."
	}

	return ev
}

// ParseGeneratedTask recovers a task definition from raw model output.
// Unlike evaluations there is no sensible fallback task, so a parse
// failure is returned as an error.
func ParseGeneratedTask(raw string) (*GeneratedTask, error) {
	body := stripFences(raw)

	var task GeneratedTask
	if err := json.Unmarshal([]byte(body), &task); err != nil {
		return nil, fmt.Errorf("failed to parse task reply: %w", err)
	}

	if task.Title == "" {
		task.Title = "New Task"
	}

	return &task, nil
}

// stripFences returns the content between the first opening fence and the
// next fence when one of the two known markers is present, and the
// trimmed whole text otherwise
func stripFences(raw string) string {
	if idx := strings.Index(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}

	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		return strings.TrimSpace(rest)
	}

	return strings.TrimSpace(raw)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
