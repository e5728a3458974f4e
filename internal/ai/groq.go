package ai

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Provider for the Groq inference API.
type GroqProvider struct {
	chatCompletionsClient
}

// NewGroqProvider creates a Groq provider.
func NewGroqProvider(apiKey string) *GroqProvider {
	return &GroqProvider{chatCompletionsClient{
		name:    "Groq",
		keyEnv:  "GROQ_API_KEY",
		apiKey:  apiKey,
		baseURL: defaultGroqBaseURL,
		client:  defaultHTTPClient(),
	}}
}
