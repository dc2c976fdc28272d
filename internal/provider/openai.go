package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
)

// OpenAI talks to any OpenAI-compatible chat completions API.
type OpenAI struct {
	client    openai.Client
	maxTokens int64
}

func NewOpenAI(opts Options) *OpenAI {
	base := opts.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(base),
		option.WithMaxRetries(0),
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), maxTokens: maxTokens(opts.MaxTokens)}
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (memory.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(req.Model),
		Messages:  openAIMessages(req.Messages),
		MaxTokens: openai.Int(o.maxTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = openAITools(req.Tools)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return memory.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return memory.Message{}, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	calls := make([]memory.ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		calls = append(calls, memory.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return memory.Assistant(msg.Content, calls...), nil
}

func openAIMessages(msgs []memory.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case memory.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case memory.RoleTool:
			if m.ToolCallID == manualCallID {
				out = append(out, openai.UserMessage(manualResultText(m)))
				continue
			}
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case memory.RoleAssistant:
			asst := openai.ChatCompletionAssistantMessageParam{}
			calls := answeredCalls(msgs, i)
			if m.Content != "" || len(calls) == 0 {
				asst.Content.OfString = openai.String(m.Content)
			}
			for _, c := range calls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: c.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      c.Name,
						Arguments: argsOrEmpty(c.Arguments),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		}
	}
	return out
}

func openAITools(defs []tools.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  openai.FunctionParameters(d.InputSchema),
			},
		})
	}
	return out
}
