package summary

import "fmt"

// PromptBuilder assembles the prompts shared by every provider.
type PromptBuilder struct{}

const diffSystemPrompt = "You are a concise changelog assistant. " +
	"Summarize code diffs into a short, clear note."

func (PromptBuilder) SystemPrompt() string {
	return diffSystemPrompt
}

func (PromptBuilder) DiffPrompt(diff string) string {
	return fmt.Sprintf(
		"Summarize the following git diff. Be brief and concrete. "+
			"Mention key files or functions touched.\n\n%s",
		truncateDiff(diff))
}
