package pipeline

import "github.com/mockllm/mockllm/internal/wire"

// EstimateUsage computes an approximate, explicitly-documented-as-such
// token count: chars/4 rounded up, per side.
func EstimateUsage(promptChars int, content string) *wire.Usage {
	completionChars := len([]rune(content))
	prompt := ceilDiv(promptChars, 4)
	completion := ceilDiv(completionChars, 4)
	return &wire.Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
