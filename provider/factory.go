package provider

import (
	"fmt"
	"strings"

	"github.com/iamsorenl/Autogen-Chat-Demo/config"
	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
)

// FactoryConfig stores provider-level credentials and endpoint settings.
type FactoryConfig struct {
	APIKey  string
	APIBase string
}

// Factory creates provider instances for the requested provider/model.
type Factory struct {
	configs      map[string]FactoryConfig
	defaultProv  string
	defaultModel string
	maxTokens    int
	temperature  float64
}

// NewFactory builds a provider factory from config. Only the default
// provider must have a key; others are available when their key is set.
func NewFactory(cfg *config.Config) (*Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	defaultProv := cfg.GetProvider()
	if defaultProv == "" {
		return nil, fmt.Errorf("team provider is required")
	}
	if _, ok := providerRegistry[defaultProv]; !ok {
		return nil, fmt.Errorf("unknown provider: %s", defaultProv)
	}

	defaultModel := cfg.GetModel()
	if defaultModel == "" {
		defaultModel = DefaultModelFor(defaultProv)
	}

	maxTokens := cfg.Team.MaxTokens
	if maxTokens == 0 {
		maxTokens = runtimecfg.TeamDefaultMaxTokens
	}
	temperature := cfg.Team.Temperature
	if temperature == 0 {
		temperature = runtimecfg.TeamDefaultTemperature
	}

	f := &Factory{
		configs:      make(map[string]FactoryConfig),
		defaultProv:  defaultProv,
		defaultModel: defaultModel,
		maxTokens:    maxTokens,
		temperature:  temperature,
	}

	for _, name := range SupportedProviders() {
		key, err := cfg.GetAPIKey(name)
		if err != nil {
			continue
		}
		f.configs[name] = FactoryConfig{APIKey: key, APIBase: cfg.GetAPIBase(name)}
	}

	if _, ok := f.configs[defaultProv]; !ok {
		return nil, fmt.Errorf("%s API key not configured", defaultProv)
	}
	return f, nil
}

// DefaultProvider returns the provider used when a participant names none.
func (f *Factory) DefaultProvider() string { return f.defaultProv }

// DefaultModel returns the model used with the default provider.
func (f *Factory) DefaultModel() string { return f.defaultModel }

// Create builds a provider instance for provider/model. Empty values fall back to defaults.
func (f *Factory) Create(providerName, model string) (Provider, error) {
	if f == nil {
		return nil, fmt.Errorf("provider factory is nil")
	}

	providerName = strings.TrimSpace(providerName)
	if providerName == "" {
		providerName = f.defaultProv
	}
	reg, ok := providerRegistry[providerName]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerName)
	}

	model = strings.TrimSpace(model)
	if model == "" {
		if providerName == f.defaultProv {
			model = f.defaultModel
		} else {
			model = reg.DefaultModel
		}
	}

	provCfg, ok := f.configs[providerName]
	if !ok {
		return nil, fmt.Errorf("%s API key not configured", providerName)
	}
	return reg.Constructor(provCfg.APIKey, provCfg.APIBase, model, f.maxTokens, f.temperature), nil
}
