// Package domain defines core entities and value objects for APEX.
//
// The domain layer is independent of infrastructure concerns: it holds the
// configuration model, the interpreter vocabulary, outcome records and the
// knowledge-service value types shared by every adapter.
package domain

// ProviderKind selects the chat provider implementation for a model.
type ProviderKind string

const (
	// ProviderKindOpenAI covers OpenAI-compatible chat completion APIs (OpenAI, Perplexity).
	ProviderKindOpenAI ProviderKind = "openai"
	// ProviderKindHTTP is the format-driven generic HTTP provider (Anthropic, Ollama, custom).
	ProviderKindHTTP ProviderKind = "http"
)

// ModelDefinition describes a chat provider declared in the config file.
type ModelDefinition struct {
	Name        string          `yaml:"name"`
	Kind        ProviderKind    `yaml:"kind"`
	Endpoint    string          `yaml:"endpoint"`
	AuthEnvVar  string          `yaml:"auth_env_var"`
	ModelID     string          `yaml:"model_id"`
	MaxTokens   int             `yaml:"max_tokens"`
	Temperature float64         `yaml:"temperature"`
	Prompt      []PromptMessage `yaml:"prompt"`
	APIFormat   APIFormat       `yaml:"api_format,omitempty"`
}

// RequiresKey reports whether the model needs an API key from the environment.
func (m ModelDefinition) RequiresKey() bool {
	return m.AuthEnvVar != ""
}

// GetMaxTokens returns the generation limit with default fallback.
func (m ModelDefinition) GetMaxTokens() int {
	if m.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return m.MaxTokens
}

// GetTemperature returns the sampling temperature with default fallback.
func (m ModelDefinition) GetTemperature() float64 {
	if m.Temperature <= 0 {
		return DefaultTemperature
	}
	return m.Temperature
}

// APIFormat defines how the generic HTTP provider builds requests and parses responses.
// All fields are optional with OpenAI-compatible defaults.
type APIFormat struct {
	// AuthHeaderName specifies the HTTP header name for authentication.
	// Default: "Authorization"
	AuthHeaderName string `yaml:"auth_header_name,omitempty"`

	// AuthHeaderPrefix is prepended to the API key value.
	// Default: "Bearer " unless AuthHeaderName is customized.
	AuthHeaderPrefix string `yaml:"auth_header_prefix,omitempty"`

	// SystemMessageMode is "inline" (default) or "separate" (top-level "system" field).
	SystemMessageMode string `yaml:"system_message_mode,omitempty"`

	// ContentWrapper is "standard" (default) or "anthropic" (content block array).
	ContentWrapper string `yaml:"content_wrapper,omitempty"`

	// ResponseJSONPath locates the generated text, e.g. "content[0].text".
	ResponseJSONPath string `yaml:"response_json_path,omitempty"`

	// ExtraHeaders are sent with each request, e.g. {"anthropic-version": "2023-06-01"}.
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
}

// PromptMessage follows the role/content pair required by most chat APIs.
type PromptMessage struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

const (
	DefaultAuthHeaderName   = "Authorization"
	DefaultAuthHeaderPrefix = "Bearer "

	SystemMessageModeInline   = "inline"
	SystemMessageModeSeparate = "separate"

	ContentWrapperStandard  = "standard"
	ContentWrapperAnthropic = "anthropic"

	DefaultResponsePath   = "choices[0].message.content"
	AnthropicResponsePath = "content[0].text"
)

// GetAuthHeaderName returns the authentication header name with default fallback.
func (f APIFormat) GetAuthHeaderName() string {
	if f.AuthHeaderName == "" {
		return DefaultAuthHeaderName
	}
	return f.AuthHeaderName
}

// GetAuthHeaderPrefix returns the authentication header prefix.
// An empty prefix with a custom header name is intentional (x-api-key style).
func (f APIFormat) GetAuthHeaderPrefix() string {
	if f.AuthHeaderName != "" && f.AuthHeaderPrefix == "" {
		return ""
	}
	if f.AuthHeaderPrefix == "" {
		return DefaultAuthHeaderPrefix
	}
	return f.AuthHeaderPrefix
}

// GetResponseJSONPath returns the JSON path for extracting response content.
func (f APIFormat) GetResponseJSONPath() string {
	if f.ResponseJSONPath == "" {
		return DefaultResponsePath
	}
	return f.ResponseJSONPath
}

// IsSystemMessageSeparate returns true if system messages go in a separate field.
func (f APIFormat) IsSystemMessageSeparate() bool {
	return f.SystemMessageMode == SystemMessageModeSeparate
}

// IsContentWrapped returns true if content is wrapped in Anthropic's block array.
func (f APIFormat) IsContentWrapped() bool {
	return f.ContentWrapper == ContentWrapperAnthropic
}
