package endpoints

import (
	"github.com/crisrod14/destinosAI/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},
		&MetricsEndpoint{},

		// Schema
		&SchemaEndpoint{},

		// Destination endpoints
		&ListDestinationsEndpoint{},
		&GetDestinationEndpoint{},
		&PutDestinationEndpoint{},
		&DeleteDestinationEndpoint{},
		&ResetDestinationsEndpoint{},

		// Generation and sync
		&GenerateEndpoint{},
		&SyncEndpoint{},

		// Generation call history
		&ListGenerationsEndpoint{},
		&GetGenerationEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
	}
}

// DestinationCommands returns the endpoints grouped under "destinations".
func DestinationCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListDestinationsEndpoint{},
		&GetDestinationEndpoint{},
		&PutDestinationEndpoint{},
		&DeleteDestinationEndpoint{},
		&ResetDestinationsEndpoint{},
	}
}

// GenerationCommands returns the endpoints grouped under "generations".
func GenerationCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListGenerationsEndpoint{},
		&GetGenerationEndpoint{},
	}
}

// PromptCommands returns the endpoints grouped under "prompts".
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
	}
}
