// Package agent drives the bounded tool-calling conversation against a
// chat-completion endpoint and implements the three-stage protocol:
// Actor answers, Reviewer independently re-verifies, Reflection distills
// a reusable guideline.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

// Completer abstracts the chat-completion capability so tests can
// script model behavior.
type Completer interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiCompleter struct {
	client openai.Client
}

// NewOpenAICompleter returns a Completer backed by the OpenAI API.
func NewOpenAICompleter(apiKey string) Completer {
	return &openaiCompleter{client: openai.NewClient(option.WithAPIKey(apiKey))}
}

func (c *openaiCompleter) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// Config holds the loop knobs.
type Config struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	MaxRounds        int
	MaxToolsPerRound int
	ToolWait         time.Duration

	// ToolRepliesSupportMedia selects how an image-bearing tool reply
	// is framed. Tool-role messages carry text only, so the images
	// always travel in a user message right after the tool reply; the
	// flag decides where the reply text goes. True keeps the text on
	// the tool message. False (the default) replaces it with a pointer
	// stub and moves the text into the user message next to the
	// images, the framing GPT-4o class endpoints expect.
	ToolRepliesSupportMedia bool
}

// Result is the typed outcome of one agent run. Err is non-nil only for
// transport-fatal failures; Answer then carries the error text so the
// caller can still persist an artifact, and Messages holds the partial
// transcript for diagnosis.
type Result struct {
	Answer   string
	Messages []openai.ChatCompletionMessageParamUnion
	Err      error
}

// Agent runs tool-calling conversations over one document.
type Agent struct {
	completer  Completer
	dispatcher *Dispatcher
	cfg        Config
}

func New(completer Completer, dispatcher *Dispatcher, cfg Config) *Agent {
	return &Agent{completer: completer, dispatcher: dispatcher, cfg: cfg}
}

// RunActor starts a fresh conversation seeded with the pruned outline,
// the question, and the running memory guideline.
func (a *Agent) RunActor(ctx context.Context, question, memory string) Result {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(actorPrompt(a.dispatcher.Outline(), question, memory)),
	}
	return a.run(ctx, messages, finalResultPattern)
}

// RunReviewer continues an actor conversation and asks for independent
// re-verification through the tools.
func (a *Agent) RunReviewer(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) Result {
	continued := append(cloneMessages(messages), openai.UserMessage(reviewerPrompt))
	return a.run(ctx, continued, finalResultPattern)
}

// RunReflection continues an actor+reviewer conversation and asks for an
// updated guideline bounded to one sentence of change.
func (a *Agent) RunReflection(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, memory string) Result {
	continued := append(cloneMessages(messages), openai.UserMessage(reflectionPrompt(memory)))
	return a.run(ctx, continued, updatedGuidelinePattern)
}

// run is the bounded multi-round loop shared by all three stages. The
// total number of model requests never exceeds MaxRounds+1: the last
// permitted request forces tool_choice "none" so the model must
// conclude.
func (a *Agent) run(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, pattern *regexp.Regexp) Result {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(a.cfg.Model),
		MaxTokens:   openai.Int(int64(a.cfg.MaxTokens)),
		Temperature: openai.Float(a.cfg.Temperature),
		Tools:       toolSchemas(),
	}

	params.Messages = messages
	completion, err := a.completer.Complete(ctx, params)
	if err != nil {
		return failed(messages, fmt.Errorf("chat completion: %w", err))
	}
	msg, err := firstChoice(completion)
	if err != nil {
		return failed(messages, err)
	}

	calls := a.trimCalls(msg.ToolCalls)
	messages = append(messages, assistantParam(msg, calls))

	requests := 1
	for len(calls) > 0 {
		// Back-pressure against rate limits, not correctness.
		time.Sleep(a.cfg.ToolWait)

		// Tool-role replies must directly follow the assistant message
		// that requested them; image-bearing user messages come after.
		var extras []openai.ChatCompletionMessageParamUnion
		for _, call := range calls {
			reply, err := a.dispatcher.Dispatch(call.Function.Name, call.Function.Arguments)
			if err != nil {
				return failed(messages, err)
			}
			toolMsg, extra := a.replyMessages(call.ID, reply)
			messages = append(messages, toolMsg)
			extras = append(extras, extra...)
		}
		messages = append(messages, extras...)

		forced := requests >= a.cfg.MaxRounds
		if forced {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
				OfAuto: openai.String("none"),
			}
		}

		params.Messages = messages
		completion, err = a.completer.Complete(ctx, params)
		if err != nil {
			return failed(messages, fmt.Errorf("chat completion: %w", err))
		}
		msg, err = firstChoice(completion)
		if err != nil {
			return failed(messages, err)
		}
		requests++

		calls = a.trimCalls(msg.ToolCalls)
		if forced {
			// The round cap is spent; drop any further requests so the
			// conversation ends even if the model ignored tool_choice.
			calls = nil
		}
		messages = append(messages, assistantParam(msg, calls))
	}

	return Result{Answer: extractTagged(pattern, msg.Content), Messages: messages}
}

// trimCalls caps the number of tool calls honored per turn, silently
// dropping the rest.
func (a *Agent) trimCalls(calls []openai.ChatCompletionMessageToolCallUnion) []openai.ChatCompletionMessageToolCallUnion {
	if len(calls) > a.cfg.MaxToolsPerRound {
		return calls[:a.cfg.MaxToolsPerRound]
	}
	return calls
}

// replyMessages frames a tool reply for the conversation. Images always
// ride in a follow-up user message; the capability flag decides whether
// the reply text stays on the tool message or moves alongside them.
func (a *Agent) replyMessages(callID string, reply Reply) (openai.ChatCompletionMessageParamUnion, []openai.ChatCompletionMessageParamUnion) {
	if len(reply.Images) == 0 {
		return openai.ToolMessage(reply.Text, callID), nil
	}

	parts := []openai.ChatCompletionContentPartUnionParam{}
	if !a.cfg.ToolRepliesSupportMedia {
		parts = append(parts, openai.TextContentPart(reply.Text))
	}
	for _, img := range reply.Images {
		parts = append(parts, openai.ImageContentPart(
			openai.ChatCompletionContentPartImageImageURLParam{URL: img.DataURL()}))
	}

	if a.cfg.ToolRepliesSupportMedia {
		return openai.ToolMessage(reply.Text, callID),
			[]openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)}
	}
	return openai.ToolMessage("The result from tool is returned in the following user message:", callID),
		[]openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)}
}

// assistantParam rebuilds the assistant message for the transcript,
// keeping only the tool calls that will actually be answered.
func assistantParam(msg openai.ChatCompletionMessage, calls []openai.ChatCompletionMessageToolCallUnion) openai.ChatCompletionMessageParamUnion {
	p := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		p.Content.OfString = openai.String(msg.Content)
	}
	for _, call := range calls {
		p.ToolCalls = append(p.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &p}
}

func firstChoice(completion *openai.ChatCompletion) (openai.ChatCompletionMessage, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("chat completion: no choices in response")
	}
	return completion.Choices[0].Message, nil
}

func failed(messages []openai.ChatCompletionMessageParamUnion, err error) Result {
	return Result{Answer: err.Error(), Messages: messages, Err: err}
}

func cloneMessages(messages []openai.ChatCompletionMessageParamUnion) []openai.ChatCompletionMessageParamUnion {
	clone := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	copy(clone, messages)
	return clone
}
