package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Advisor is the AI assistant that handles the chat session.
type Advisor struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Format renders answers before they are printed, answers are printed as
	// is when nil.
	Format func(markdown string) string
}

// New creates a new Advisor. The facilitator answers the user with the
// allocation read from source and the help of the experts.
//
// w receives the advisor's output (e.g., os.Stdout), and r is the user
// input (e.g., os.Stdin).
func New(w io.Writer, r io.Reader, source ReportSource, experts ...*Expert) *Advisor {
	return &Advisor{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(source, experts...),
	}
}

// Start creates all the Gemini chats.
func (a *Advisor) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

// Ask sends a question to the facilitator and returns its text answer.
func (a *Advisor) Ask(ctx context.Context, question string) (string, error) {
	content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	return text(content), nil
}

const prompt = "assist> "

// Run starts the interactive REPL session for the advisor.
func (a *Advisor) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to alloc assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		var input string

		// Flush prompts from the list and then ask for the user.
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
		}

		if input == "bye" {
			return nil
		}

		answer, err := a.Ask(ctx, input)
		if err != nil {
			return err
		}
		if a.Format != nil {
			answer = a.Format(answer)
		}
		fmt.Fprintln(a.w, answer)
	}
}

// text joins the text parts of c.
func text(c *genai.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
