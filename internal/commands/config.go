package commands

// GatewayConfig contains common flag definitions for the AI gateway
type GatewayConfig struct {
	// OpenRouterKey is the API key for the OpenRouter gateway
	OpenRouterKey string `help:"OpenRouter API key" env:"OPENROUTER_API_KEY" required:""`
	// OpenRouterModel is the model used for relevance scoring and chat
	OpenRouterModel string `help:"OpenRouter model to use" default:"google/gemini-2.5-flash" env:"OPENROUTER_MODEL"`
	// OpenRouterURL overrides the gateway endpoint, mainly for testing
	OpenRouterURL string `help:"OpenRouter API base URL" default:"https://openrouter.ai/api/v1" env:"OPENROUTER_URL"`
}

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// DataDir is the path to the data directory
	DataDir string `help:"Path to data directory" default:"./data"`
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
}
