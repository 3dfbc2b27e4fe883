package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openai/openai-go/v2"
)

// Sample is one question over one document, read from the sample.json
// file inside each raw-data entry.
type Sample struct {
	DocID    string `json:"doc_id"`
	Question string `json:"question"`
}

// Artifact is the persisted per-question record. One is written for
// every processed question, including fatally failed ones.
type Artifact struct {
	SessionID string `json:"session_id"`
	DocID     string `json:"doc_id"`
	Question  string `json:"question"`

	ActorResponse string            `json:"actor_response"`
	ActorMessages []json.RawMessage `json:"actor_messages"`

	ReviewerResponse string            `json:"reviewer_response"`
	ReviewerMessages []json.RawMessage `json:"reviewer_messages"`

	// ReflectionMessages is present only when the reviewer disagreed
	// with the actor and the guideline was revisited.
	ReflectionMessages []json.RawMessage `json:"reflection_messages,omitempty"`

	// Memory is the guideline in effect after this question.
	Memory string `json:"memory"`

	Error string `json:"error,omitempty"`
}

func loadSample(dir string) (Sample, error) {
	data, err := os.ReadFile(filepath.Join(dir, "sample.json"))
	if err != nil {
		return Sample{}, fmt.Errorf("read sample: %w", err)
	}
	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return Sample{}, fmt.Errorf("parse sample: %w", err)
	}
	return s, nil
}

// artifactPath names job files so a batch can resume by index.
func artifactPath(resultsDir string, index int) string {
	return filepath.Join(resultsDir, fmt.Sprintf("job_%05d.json", index))
}

func saveArtifact(path string, artifact *Artifact) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// marshalMessages converts an API transcript into raw JSON for the
// artifact; individual failures degrade to an error stub rather than
// losing the whole transcript.
func marshalMessages(messages []openai.ChatCompletionMessageParamUnion) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			data = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
		}
		out = append(out, json.RawMessage(data))
	}
	return out
}
