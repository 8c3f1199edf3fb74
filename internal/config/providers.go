package config

import (
	"fmt"

	"github.com/JaimeStill/crediscope/internal/providers"
)

// ProvidersConfig holds one section per external signal source.
type ProvidersConfig struct {
	FactCheck         providers.Config `toml:"fact_check"`
	Toxicity          providers.Config `toml:"toxicity"`
	URLSafety         providers.Config `toml:"url_safety"`
	Translation       providers.Config `toml:"translation"`
	OpticalExtraction providers.Config `toml:"optical_extraction"`
}

func providerEnv(name string) *providers.Env {
	prefix := "CREDISCOPE_PROVIDERS_" + name + "_"
	return &providers.Env{
		APIKey:   prefix + "API_KEY",
		Endpoint: prefix + "ENDPOINT",
		Timeout:  prefix + "TIMEOUT",
		Rate:     prefix + "RATE",
		Burst:    prefix + "BURST",
	}
}

// Finalize finalizes every provider section. A shared Google API key in
// CREDISCOPE_GOOGLE_API_KEY fills any section left without one.
func (c *ProvidersConfig) Finalize(sharedKey string) error {
	sections := []struct {
		name string
		env  string
		cfg  *providers.Config
	}{
		{"fact_check", "FACT_CHECK", &c.FactCheck},
		{"toxicity", "TOXICITY", &c.Toxicity},
		{"url_safety", "URL_SAFETY", &c.URLSafety},
		{"translation", "TRANSLATION", &c.Translation},
		{"optical_extraction", "OPTICAL_EXTRACTION", &c.OpticalExtraction},
	}

	for _, s := range sections {
		if err := s.cfg.Finalize(providerEnv(s.env)); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if s.cfg.APIKey == "" {
			s.cfg.APIKey = sharedKey
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	c.FactCheck.Merge(&overlay.FactCheck)
	c.Toxicity.Merge(&overlay.Toxicity)
	c.URLSafety.Merge(&overlay.URLSafety)
	c.Translation.Merge(&overlay.Translation)
	c.OpticalExtraction.Merge(&overlay.OpticalExtraction)
}
