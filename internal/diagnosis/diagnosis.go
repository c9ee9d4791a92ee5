// Package diagnosis turns a free-text symptom description into free-text
// advice. The Diagnoser interface is the only thing the rest of the code
// depends on; the chat-model client and the canned fallback both satisfy it.
package diagnosis

import "context"

// Diagnoser returns advice for the given symptom text, or an error whose
// message can be shown to the user.
type Diagnoser interface {
	Diagnose(ctx context.Context, symptoms string) (string, error)
}

// Func adapts an ordinary function to the Diagnoser interface.
type Func func(ctx context.Context, symptoms string) (string, error)

func (f Func) Diagnose(ctx context.Context, symptoms string) (string, error) {
	return f(ctx, symptoms)
}

// Canned returns the same general advice for every request. The backend
// falls back to it when no model API key is configured.
type Canned struct{}

const cannedAdvice = "Based on your symptoms, here are some general possibilities:\n\n" +
	"Possible Conditions:\n" +
	"• Common cold or flu\n" +
	"• Seasonal allergies\n" +
	"• Stress-related symptoms\n\n" +
	"General Advice:\n" +
	"• Rest and stay hydrated\n" +
	"• Monitor your symptoms\n" +
	"• Avoid self-diagnosis\n\n" +
	"⚠️ IMPORTANT: This is for informational purposes only. " +
	"Always consult a healthcare professional for proper diagnosis and treatment."

func (Canned) Diagnose(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return cannedAdvice, nil
}
