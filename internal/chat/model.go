package chat

// Gemini Model IDs accepted by the generateContent REST endpoint.
//
// | Model Name            | API Model ID          | Use Case                          |
// |-----------------------|-----------------------|-----------------------------------|
// | Gemini 1.5 Flash      | gemini-1.5-flash      | Original doodle critique model    |
// | Gemini 2.5 Flash      | gemini-2.5-flash      | Stable, balanced performance      |
// | Gemini 2.5 Flash-Lite | gemini-2.5-flash-lite | High-throughput, lowest cost      |
// | Gemini 2.5 Pro        | gemini-2.5-pro        | Slower, more detailed critique    |
const (
	// ModelGemini15Flash is the model the enhancer was first deployed with.
	ModelGemini15Flash = "gemini-1.5-flash"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashLite is for high-throughput, lowest cost.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"

	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"
)

// DefaultModelName is the model used when GEMINI_MODEL is not set.
const DefaultModelName = ModelGemini15Flash

// DefaultBaseURL is the Gemini REST API base URL.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
