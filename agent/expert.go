package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// sender is the part of a genai.Chat an Expert uses.
type sender interface {
	Send(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error)
}

// Expert represent a chat with a business expert.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        sender
}

func NewExpert(name, description string) *Expert {
	return &Expert{
		Name:        name,
		Description: description,
		ModelName:   model,
	}
}

func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return fmt.Errorf("cannot start %s chat: %w", e.Name, err)
	}
	e.chat = chat
	return nil
}

// maxCalls bounds the rounds of function calls for a single question.
const maxCalls = 8

// Ask sends parts to the expert. Function calls are answered using the
// Library until the expert returns content without any call.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from expert %s", e.Name)
		}
		content := resp.Candidates[0].Content

		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall == nil {
				continue
			}
			if e.Library == nil {
				return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
			}
			log.Debug().Str("expert", e.Name).Str("function", p.FunctionCall.Name).Msg("call")
			// errors are sent back in the response
			calls = append(calls, &genai.Part{FunctionResponse: e.Library(ctx, p.FunctionCall)})
		}
		if len(calls) == 0 {
			return content, nil
		}
		// Ask again the expert with the responses he asked for.
		parts = calls
	}
	return nil, fmt.Errorf("expert %s is still calling functions after %d rounds", e.Name, maxCalls)
}

// Declaration returns the function declaration to ask this expert.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {
					Type:        genai.TypeString,
					Description: "The question to ask the expert.",
				},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "Expert's response.",
		},
	}
}

// Call perform the call of asking this expert.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	arg0 := args["question"]
	question, ok := arg0.(string)
	if !ok {
		return errorResponse(id, e.Name, fmt.Errorf("invalid type got %T, expected string", arg0))
	}

	response, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return errorResponse(id, e.Name, fmt.Errorf("something went wrong while calling the expert: %w", err))
	}

	r := text(response)
	log.Debug().Str("expert", e.Name).Str("question", question).Str("answer", r).Msg("asked")
	return &genai.FunctionResponse{
		ID:       id,
		Name:     e.Name,
		Response: map[string]any{"output": r},
	}
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:       id,
		Name:     name,
		Response: map[string]any{"error": err.Error()},
	}
}
