package ai

const defaultCerebrasBaseURL = "https://api.cerebras.ai/v1"

// CerebrasProvider implements Provider for the Cerebras inference API.
type CerebrasProvider struct {
	chatCompletionsClient
}

// NewCerebrasProvider creates a Cerebras provider.
func NewCerebrasProvider(apiKey string) *CerebrasProvider {
	return &CerebrasProvider{chatCompletionsClient{
		name:    "Cerebras",
		keyEnv:  "CEREBRAS_API_KEY",
		apiKey:  apiKey,
		baseURL: defaultCerebrasBaseURL,
		client:  defaultHTTPClient(),
	}}
}
