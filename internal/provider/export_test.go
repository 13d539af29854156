package provider

// Exports for testing. These allow black-box tests to reach internal
// classification logic without widening the public API.

var (
	ClassifyOpenAIError    = classifyOpenAIError
	ClassifyAnthropicError = classifyAnthropicError
	ClassifyGeminiError    = classifyGeminiError
	SystemInstruction      = systemInstruction
)
