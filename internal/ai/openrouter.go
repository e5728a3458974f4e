package ai

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider implements Provider for the OpenRouter aggregation API.
type OpenRouterProvider struct {
	chatCompletionsClient
}

// NewOpenRouterProvider creates an OpenRouter provider.
func NewOpenRouterProvider(apiKey string) *OpenRouterProvider {
	return &OpenRouterProvider{chatCompletionsClient{
		name:    "OpenRouter",
		keyEnv:  "OPENROUTER_API_KEY",
		apiKey:  apiKey,
		baseURL: defaultOpenRouterBaseURL,
		// OpenRouter asks callers to identify themselves for its rankings.
		extraHdrs: map[string]string{
			"X-Title": "coach-app",
		},
		client: defaultHTTPClient(),
	}}
}
