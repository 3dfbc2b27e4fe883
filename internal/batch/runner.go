// Package batch processes a batch of document questions sequentially,
// threading the memory guideline from question to question and writing
// one resumable job artifact per question.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lisun-ai/DocAgent/internal/agent"
	"github.com/lisun-ai/DocAgent/internal/config"
)

// Runner drives the per-question Actor / Reviewer / Reflection protocol
// over every sample in SamplesDir.
type Runner struct {
	DataDir    string // preprocessed document directories
	SamplesDir string // raw-data entries, one sample.json each
	ResultsDir string
	Completer  agent.Completer
	Config     config.Config
	Output     io.Writer
}

// Run processes the whole batch. Questions whose artifact already
// exists are skipped; their stored memory value is restored so a
// resumed batch continues with the same guideline. Per-question fatal
// failures are recorded in the artifact and do not stop the batch.
func (r *Runner) Run(ctx context.Context) error {
	out := r.Output
	if out == nil {
		out = os.Stdout
	}

	entries, err := os.ReadDir(r.SamplesDir)
	if err != nil {
		return fmt.Errorf("read samples dir: %w", err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	if err := os.MkdirAll(r.ResultsDir, 0755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	formatHeader(out, r.Config.Model, len(dirs), r.ResultsDir)

	memory := ""
	for index, name := range dirs {
		path := artifactPath(r.ResultsDir, index)
		if data, err := os.ReadFile(path); err == nil {
			var prev Artifact
			if err := json.Unmarshal(data, &prev); err == nil {
				memory = prev.Memory
			}
			formatSkip(out, path)
			continue
		}

		sample, err := loadSample(filepath.Join(r.SamplesDir, name))
		if err != nil {
			return fmt.Errorf("sample %s: %w", name, err)
		}
		docID := strings.TrimSuffix(sample.DocID, ".pdf")

		formatQuestionBanner(out, index, len(dirs), docID)

		artifact := &Artifact{
			SessionID: uuid.NewString(),
			DocID:     docID,
			Question:  sample.Question,
			Memory:    memory,
		}

		memory = r.processQuestion(ctx, out, docID, sample.Question, memory, artifact)
		artifact.Memory = memory

		if err := saveArtifact(path, artifact); err != nil {
			return err
		}
	}

	return nil
}

// processQuestion runs the three-stage protocol for one question,
// filling the artifact as stages complete. It returns the memory
// guideline to carry into the next question.
func (r *Runner) processQuestion(ctx context.Context, out io.Writer, docID, question, memory string, artifact *Artifact) string {
	doc, err := LoadDocument(r.DataDir, docID, r.Config.MaxSectionDepth)
	if err != nil {
		artifact.ActorResponse = err.Error()
		artifact.Error = err.Error()
		formatError(out, err)
		return memory
	}

	dispatcher := agent.NewDispatcher(doc.Tree, doc.Store, agent.DispatcherConfig{
		MaxSearchResults:   r.Config.MaxSearchResults,
		MaxPageImages:      r.Config.MaxPageImages,
		MaxSectionChars:    r.Config.MaxSectionChars,
		OutlineSkipPage:    r.Config.OutlineSkipPage,
		OutlineCaptionPage: r.Config.OutlineCaptionPage,
	})
	ag := agent.New(r.Completer, dispatcher, agent.Config{
		Model:                   r.Config.Model,
		Temperature:             r.Config.Temperature,
		MaxTokens:               r.Config.MaxTokens,
		MaxRounds:               r.Config.MaxRounds,
		MaxToolsPerRound:        r.Config.MaxToolsPerRound,
		ToolWait:                time.Duration(r.Config.ToolWaitSecs) * time.Second,
		ToolRepliesSupportMedia: r.Config.ToolReplyMedia,
	})

	actor := ag.RunActor(ctx, question, memory)
	artifact.ActorResponse = actor.Answer
	artifact.ActorMessages = marshalMessages(actor.Messages)
	formatStage(out, "actor", actor.Answer)
	if actor.Err != nil {
		artifact.Error = actor.Err.Error()
		formatError(out, actor.Err)
		return memory
	}

	reviewer := ag.RunReviewer(ctx, actor.Messages)
	artifact.ReviewerResponse = reviewer.Answer
	artifact.ReviewerMessages = marshalMessages(reviewer.Messages[len(actor.Messages):])
	formatStage(out, "reviewer", reviewer.Answer)
	if reviewer.Err != nil {
		artifact.Error = reviewer.Err.Error()
		formatError(out, reviewer.Err)
		return memory
	}

	// The guideline is revisited only when the reviewer disagrees.
	if reviewer.Answer != actor.Answer {
		reflection := ag.RunReflection(ctx, reviewer.Messages, memory)
		artifact.ReflectionMessages = marshalMessages(reflection.Messages[len(reviewer.Messages):])
		if reflection.Err != nil {
			artifact.Error = reflection.Err.Error()
			formatError(out, reflection.Err)
			return memory
		}
		if edits := sentenceEdits(memory, reflection.Answer); edits > 1 {
			formatMemoryRejected(out, edits)
		} else {
			memory = reflection.Answer
			formatMemoryUpdate(out, memory)
		}
	}

	return memory
}
