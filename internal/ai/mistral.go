package ai

const defaultMistralBaseURL = "https://api.mistral.ai/v1"

// MistralProvider implements Provider for the Mistral chat API.
type MistralProvider struct {
	chatCompletionsClient
}

// NewMistralProvider creates a Mistral provider.
func NewMistralProvider(apiKey string) *MistralProvider {
	return &MistralProvider{chatCompletionsClient{
		name:    "Mistral",
		keyEnv:  "MISTRAL_API_KEY",
		apiKey:  apiKey,
		baseURL: defaultMistralBaseURL,
		client:  defaultHTTPClient(),
	}}
}
