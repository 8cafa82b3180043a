package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/wire"
)

func TestShapeResult_NoneDropsReasoning(t *testing.T) {
	s := shapeResult(configstore.ReasoningNone, Result{Content: "hi", Reasoning: "because"})
	assert.Equal(t, "hi", s.Content)
	assert.Empty(t, s.ReasoningField)
}

func TestShapeResult_PrefixWrapsContent(t *testing.T) {
	s := shapeResult(configstore.ReasoningPrefix, Result{Content: "hi", Reasoning: "because"})
	assert.Equal(t, "<think>\nbecause\n</think>\n\nhi", s.Content)
	assert.Empty(t, s.ReasoningField)
}

func TestShapeResult_FieldKeepsContentUnchanged(t *testing.T) {
	s := shapeResult(configstore.ReasoningField, Result{Content: "hi", Reasoning: "because"})
	assert.Equal(t, "hi", s.Content)
	assert.Equal(t, "because", s.ReasoningField)
}

func TestShapeResult_BothAppliesBoth(t *testing.T) {
	s := shapeResult(configstore.ReasoningBoth, Result{Content: "hi", Reasoning: "because"})
	assert.Equal(t, "<think>\nbecause\n</think>\n\nhi", s.Content)
	assert.Equal(t, "because", s.ReasoningField)
}

func TestShapeResult_DefaultsFinishReasonToStop(t *testing.T) {
	s := shapeResult(configstore.ReasoningNone, Result{Content: "hi"})
	assert.Equal(t, "stop", s.FinishReason)
}

func TestBuildFrames_ConcatenatedDeltasEqualNonStreamContent_P5(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone}
	r := Result{Content: "hello world, this is a streamed reply", FinishReason: "stop"}

	resp := BuildResponse("id1", 0, "m", opts, 10, r)
	frames := BuildFrames("id1", 0, "m", opts, 10, 4, r)

	var assembled strings.Builder
	for _, f := range frames {
		if f.Choices[0].Delta != nil {
			assembled.WriteString(f.Choices[0].Delta.Content)
		}
	}
	assert.Equal(t, resp.Choices[0].Message.Content, assembled.String())
}

func TestBuildFrames_ReasoningModeNoneNeverSetsReasoningContent_P6(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone}
	r := Result{Content: "hi", Reasoning: "secret chain of thought"}
	frames := BuildFrames("id1", 0, "m", opts, 5, 3, r)
	for _, f := range frames {
		if f.Choices[0].Delta != nil {
			assert.Empty(t, f.Choices[0].Delta.ReasoningContent)
		}
	}
	resp := BuildResponse("id1", 0, "m", opts, 5, r)
	assert.Empty(t, resp.Choices[0].Message.ReasoningContent)
}

func TestBuildFrames_ChunksByUnicodeScalar(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone}
	r := Result{Content: "héllo wörld", FinishReason: "stop"}
	frames := BuildFrames("id1", 0, "m", opts, 1, 3, r)

	var total int
	for _, f := range frames {
		if f.Choices[0].Delta != nil && f.Choices[0].Delta.Content != "" {
			total += len([]rune(f.Choices[0].Delta.Content))
		}
	}
	assert.Equal(t, len([]rune(r.Content)), total)
}

func TestBuildFrames_FinalFrameCarriesFinishReasonAndUsage(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone, IncludeUsage: true}
	r := Result{Content: "hi", FinishReason: "stop"}
	frames := BuildFrames("id1", 0, "m", opts, 8, 2, r)
	last := frames[len(frames)-1]
	require.NotNil(t, last.Choices[0].FinishReason)
	assert.Equal(t, "stop", *last.Choices[0].FinishReason)
	require.NotNil(t, last.Usage)
	assert.Equal(t, 2, last.Usage.PromptTokens) // ceil(8/4)
}

func TestBuildResponse_BackendSuppliedUsageWinsOverEstimate(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone, IncludeUsage: true}
	supplied := &wire.Usage{PromptTokens: 99, CompletionTokens: 1, TotalTokens: 100}
	r := Result{Content: "hi", FinishReason: "stop", Usage: supplied}

	resp := BuildResponse("id1", 0, "m", opts, 8, r)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 99, resp.Usage.PromptTokens)
	assert.Same(t, supplied, resp.Usage)
}

func TestBuildFrames_BackendSuppliedUsageWinsOverEstimate(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone, IncludeUsage: true}
	supplied := &wire.Usage{PromptTokens: 99, CompletionTokens: 1, TotalTokens: 100}
	r := Result{Content: "hi", FinishReason: "stop", Usage: supplied}

	frames := BuildFrames("id1", 0, "m", opts, 8, 2, r)
	last := frames[len(frames)-1]
	require.NotNil(t, last.Usage)
	assert.Same(t, supplied, last.Usage)
}

func TestBuildResponse_NoBackendUsageAndIncludeUsageFalseOmitsUsage(t *testing.T) {
	opts := configstore.ResponseOptions{ReasoningMode: configstore.ReasoningNone, IncludeUsage: false}
	r := Result{Content: "hi", FinishReason: "stop"}

	resp := BuildResponse("id1", 0, "m", opts, 8, r)
	assert.Nil(t, resp.Usage)
}

func TestEstimateUsage_CeilDivision(t *testing.T) {
	u := EstimateUsage(5, "abc")
	assert.Equal(t, 2, u.PromptTokens)     // ceil(5/4)
	assert.Equal(t, 1, u.CompletionTokens) // ceil(3/4)
	assert.Equal(t, 3, u.TotalTokens)
}

func TestChunkRunes_EmptyStringProducesNoChunks(t *testing.T) {
	assert.Nil(t, chunkRunes("", 4))
}
