package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/docs"
	"github.com/etnz/allocation/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// ReportSource evaluates the current allocation.
type ReportSource func(ctx context.Context) (*allocation.Report, error)

// creates the facilitator
func newFacilitator(source ReportSource, experts ...*Expert) *Expert {
	lib := []Function{GetAllocation(source)}
	for _, e := range experts {
		lib = append(lib, e)
	}
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the user's allocation advisor. The user holds a small portfolio of
			ETFs, stocks, crypto, options and cash in USD and TWD, and rebalances it
			towards a target allocation by bucket.

			Always call get_allocation before answering a question about the portfolio,
			the figures change with the market. A bucket is "buy" when it is below its
			target by more than the tolerance, "sell" when above. Buy with cash first;
			to reduce a bucket the user prefers selling part of it or writing covered calls.

			Ask the experts from the Tools whenever you need news or information you do not have.
			Answer in concise markdown, with figures in USD unless asked otherwise.

			Below is how the allocation is computed.

		` + must(docs.GetTopics("units", "buckets", "rate"))}}},
		},
		Library: NewLibrary(lib),
	}
}

func must(s string, err error) string {
	if err != nil {
		panic(err)
	}
	return s
}

// NewTrader creates an expert grounded on Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader,
		Very well aware of all the financial products and institutions,
		about the latest news about the different funds or companies.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a expert in Trading, you can search and find about anything related to
			financial institutions, companies, markets, funds etc. You Leverage Google Search to
			ground your assertions in a solid truth.
			You can get the latests news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// GetAllocation is the get_allocation function: it returns the current
// allocation as JSON, or as the markdown dashboard.
func GetAllocation(source ReportSource) *Func {
	const name = "get_allocation"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: name,
			Description: `get_allocation values every holding at the last market prices and compares
			the buckets to their target allocation.

			It details for each holding its quantity, unit, price and value in USD and TWD,
			and for each bucket its current value and share, its target share, the amount
			to buy (positive delta) or to sell (negative delta) and its status.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"format": {
						Type:        genai.TypeString,
						Description: "json (default) or markdown.",
						Enum:        []string{"json", "markdown"},
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The allocation report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			r, err := source(ctx)
			if err != nil {
				return errorResponse(id, name, fmt.Errorf("could not evaluate the allocation: %w", err))
			}
			var output string
			switch format := args["format"]; format {
			case nil, "", "json":
				content, err := json.Marshal(r)
				if err != nil {
					return errorResponse(id, name, err)
				}
				output = string(content)
			case "markdown":
				output = renderer.Markdown(renderer.NewDashboard(r))
			default:
				return errorResponse(id, name, fmt.Errorf("unknown format %v, expected json or markdown", format))
			}
			return &genai.FunctionResponse{
				ID:       id,
				Name:     name,
				Response: map[string]any{"output": output},
			}
		},
	}
}
