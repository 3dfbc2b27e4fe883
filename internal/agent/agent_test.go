package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go/v2"

	"github.com/lisun-ai/DocAgent/internal/assets"
)

// scriptedCompleter plays back canned completions in order and records
// every request for inspection. When repeatLast is set, the final
// completion answers all further requests.
type scriptedCompleter struct {
	responses  []*openai.ChatCompletion
	repeatLast bool

	requests []openai.ChatCompletionNewParams
	err      error
}

func (c *scriptedCompleter) Complete(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	c.requests = append(c.requests, params)
	if c.err != nil {
		return nil, c.err
	}
	i := len(c.requests) - 1
	if i >= len(c.responses) {
		if !c.repeatLast {
			return nil, errors.New("scripted completer exhausted")
		}
		i = len(c.responses) - 1
	}
	return c.responses[i], nil
}

func textResponse(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content},
		}},
	}
}

func toolCallResponse(content string, calls ...openai.ChatCompletionMessageToolCallUnion) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content, ToolCalls: calls},
		}},
	}
}

func searchCall(id string) openai.ChatCompletionMessageToolCallUnion {
	return openai.ChatCompletionMessageToolCallUnion{
		ID: id,
		Function: openai.ChatCompletionMessageFunctionToolCallFunction{
			Name:      toolSearch,
			Arguments: `{"keyword":"keyword"}`,
		},
	}
}

func testAgent(t *testing.T, completer Completer, cfg Config) *Agent {
	t.Helper()
	return New(completer, testDispatcher(t, defaultDispatcherConfig()), cfg)
}

func loopConfig() Config {
	return Config{
		Model:            "gpt-4o",
		MaxTokens:        8192,
		MaxRounds:        10,
		MaxToolsPerRound: 10,
	}
}

func TestRunActorImmediateAnswer(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			textResponse("Thinking.\n<final_result>The revenue grew.</final_result>"),
		},
	}
	a := testAgent(t, completer, loopConfig())

	result := a.RunActor(context.Background(), "Did revenue grow?", "")
	if result.Err != nil {
		t.Fatalf("RunActor() error: %v", result.Err)
	}
	if result.Answer != "The revenue grew." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if len(completer.requests) != 1 {
		t.Fatalf("made %d requests, want 1", len(completer.requests))
	}

	req := completer.requests[0]
	if len(req.Tools) != 5 {
		t.Errorf("request declares %d tools, want 5", len(req.Tools))
	}
	if len(req.Messages) != 2 || req.Messages[0].OfSystem == nil || req.Messages[1].OfUser == nil {
		t.Fatalf("seed messages malformed: %+v", req.Messages)
	}

	// Transcript: system, user, assistant.
	if len(result.Messages) != 3 || result.Messages[2].OfAssistant == nil {
		t.Errorf("transcript has %d messages, want 3 ending in assistant", len(result.Messages))
	}
}

func TestRunToolRound(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			toolCallResponse("", searchCall("call_1")),
			textResponse("<final_result>Found it.</final_result>"),
		},
	}
	a := testAgent(t, completer, loopConfig())

	result := a.RunActor(context.Background(), "Where is the keyword?", "")
	if result.Err != nil {
		t.Fatalf("RunActor() error: %v", result.Err)
	}
	if result.Answer != "Found it." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if len(completer.requests) != 2 {
		t.Fatalf("made %d requests, want 2", len(completer.requests))
	}

	// Second request: system, user, assistant w/ tool call, tool reply.
	msgs := completer.requests[1].Messages
	if len(msgs) != 4 {
		t.Fatalf("second request has %d messages, want 4", len(msgs))
	}
	assistant := msgs[2].OfAssistant
	if assistant == nil || len(assistant.ToolCalls) != 1 {
		t.Fatalf("assistant message missing tool call: %+v", msgs[2])
	}
	tool := msgs[3].OfTool
	if tool == nil {
		t.Fatalf("tool reply missing: %+v", msgs[3])
	}
	if tool.ToolCallID != "call_1" {
		t.Errorf("tool reply call ID = %q, want call_1", tool.ToolCallID)
	}
}

func TestRunTerminatesAtRoundCap(t *testing.T) {
	// The model never stops asking for tools; the loop must still end
	// after MaxRounds+1 total requests with tool choice forced off.
	completer := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			toolCallResponse("Still looking.", searchCall("call_x")),
		},
		repeatLast: true,
	}
	cfg := loopConfig()
	cfg.MaxRounds = 3
	a := testAgent(t, completer, cfg)

	result := a.RunActor(context.Background(), "Question?", "")
	if result.Err != nil {
		t.Fatalf("RunActor() error: %v", result.Err)
	}
	if want := cfg.MaxRounds + 1; len(completer.requests) != want {
		t.Fatalf("made %d requests, want %d", len(completer.requests), want)
	}

	last := completer.requests[len(completer.requests)-1]
	if last.ToolChoice.OfAuto.Value != "none" {
		t.Errorf("final request tool choice = %q, want none", last.ToolChoice.OfAuto.Value)
	}
	if result.Answer != "Still looking." {
		t.Errorf("Answer = %q, want content of the forced final response", result.Answer)
	}
}

func TestRunTrimsExcessToolCalls(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			toolCallResponse("", searchCall("call_1"), searchCall("call_2"), searchCall("call_3")),
			textResponse("<final_result>Done.</final_result>"),
		},
	}
	cfg := loopConfig()
	cfg.MaxToolsPerRound = 2
	a := testAgent(t, completer, cfg)

	result := a.RunActor(context.Background(), "Question?", "")
	if result.Err != nil {
		t.Fatalf("RunActor() error: %v", result.Err)
	}

	msgs := completer.requests[1].Messages
	assistant := msgs[2].OfAssistant
	if assistant == nil || len(assistant.ToolCalls) != 2 {
		t.Fatalf("assistant keeps %d tool calls, want 2", len(assistant.ToolCalls))
	}
	var toolReplies int
	for _, m := range msgs {
		if m.OfTool != nil {
			toolReplies++
		}
	}
	if toolReplies != 2 {
		t.Errorf("got %d tool replies, want 2 (every kept call answered)", toolReplies)
	}
}

func TestRunTransportError(t *testing.T) {
	transportErr := errors.New("connection reset")
	completer := &scriptedCompleter{err: transportErr}
	a := testAgent(t, completer, loopConfig())

	result := a.RunActor(context.Background(), "Question?", "")
	if result.Err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.Is(result.Err, transportErr) {
		t.Errorf("Err = %v, want wrapped %v", result.Err, transportErr)
	}
	if result.Answer != result.Err.Error() {
		t.Errorf("Answer = %q, want the error text", result.Answer)
	}
	if len(result.Messages) == 0 {
		t.Error("partial transcript missing")
	}
}

func TestRunNoChoices(t *testing.T) {
	completer := &scriptedCompleter{responses: []*openai.ChatCompletion{{}}}
	a := testAgent(t, completer, loopConfig())

	result := a.RunActor(context.Background(), "Question?", "")
	if result.Err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestRunReviewerContinuesTranscript(t *testing.T) {
	actorCompleter := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			textResponse("<final_result>Yes.</final_result>"),
		},
	}
	a := testAgent(t, actorCompleter, loopConfig())
	actor := a.RunActor(context.Background(), "Question?", "")
	if actor.Err != nil {
		t.Fatal(actor.Err)
	}

	reviewerCompleter := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			textResponse("<final_result>Confirmed: yes.</final_result>"),
		},
	}
	b := testAgent(t, reviewerCompleter, loopConfig())
	reviewer := b.RunReviewer(context.Background(), actor.Messages)
	if reviewer.Err != nil {
		t.Fatal(reviewer.Err)
	}
	if reviewer.Answer != "Confirmed: yes." {
		t.Errorf("Answer = %q", reviewer.Answer)
	}

	// Actor transcript + review instruction, then the fresh assistant turn.
	msgs := reviewerCompleter.requests[0].Messages
	if want := len(actor.Messages) + 1; len(msgs) != want {
		t.Fatalf("reviewer request has %d messages, want %d", len(msgs), want)
	}
	if msgs[len(msgs)-1].OfUser == nil {
		t.Error("review instruction should be the trailing user message")
	}

	// The actor transcript must not be mutated by the continuation.
	if len(actor.Messages) != 3 {
		t.Errorf("actor transcript grew to %d messages", len(actor.Messages))
	}
}

func TestRunReflectionExtractsGuideline(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []*openai.ChatCompletion{
			textResponse("<updated_guideline>Cross-check totals in table screenshots.</updated_guideline>"),
		},
	}
	a := testAgent(t, completer, loopConfig())

	result := a.RunReflection(context.Background(), []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("s"), openai.UserMessage("q"),
	}, "old guideline")
	if result.Err != nil {
		t.Fatal(result.Err)
	}
	if result.Answer != "Cross-check totals in table screenshots." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestReplyMessagesImageFraming(t *testing.T) {
	reply := Reply{
		Text:   "Here is the image content for image_id 0",
		Images: []assets.Image{{MediaType: "image/png", Data: pngStub}},
	}

	t.Run("split into tool stub and user message", func(t *testing.T) {
		a := testAgent(t, &scriptedCompleter{}, loopConfig())
		toolMsg, extras := a.replyMessages("call_1", reply)

		if toolMsg.OfTool == nil {
			t.Fatal("tool stub missing")
		}
		if got := toolMsg.OfTool.Content.OfString.Value; !strings.Contains(got, "returned in the following user message") {
			t.Errorf("tool stub text = %q", got)
		}
		if len(extras) != 1 || extras[0].OfUser == nil {
			t.Fatalf("extras = %+v, want one user message", extras)
		}
		parts := extras[0].OfUser.Content.OfArrayOfContentParts
		if len(parts) != 2 || parts[0].OfText == nil || parts[1].OfImageURL == nil {
			t.Fatalf("user parts malformed: %+v", parts)
		}
	})

	t.Run("text stays on tool message when supported", func(t *testing.T) {
		cfg := loopConfig()
		cfg.ToolRepliesSupportMedia = true
		a := testAgent(t, &scriptedCompleter{}, cfg)
		toolMsg, extras := a.replyMessages("call_1", reply)

		if got := toolMsg.OfTool.Content.OfString.Value; got != reply.Text {
			t.Errorf("tool text = %q, want the reply text", got)
		}
		if len(extras) != 1 || extras[0].OfUser == nil {
			t.Fatalf("extras = %+v, want one user message carrying images", extras)
		}
		parts := extras[0].OfUser.Content.OfArrayOfContentParts
		if len(parts) != 1 || parts[0].OfImageURL == nil {
			t.Fatalf("user parts malformed: %+v", parts)
		}
	})

	t.Run("text only reply stays a plain tool message", func(t *testing.T) {
		a := testAgent(t, &scriptedCompleter{}, loopConfig())
		toolMsg, extras := a.replyMessages("call_1", Reply{Text: "plain"})
		if toolMsg.OfTool == nil || len(extras) != 0 {
			t.Errorf("plain reply framed as %+v with %d extras", toolMsg, len(extras))
		}
	})
}
