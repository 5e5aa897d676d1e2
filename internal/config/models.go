package config

// ModelConfig represents the configuration for model artifacts
type ModelConfig struct {
	Dir string
}

// ClassifierConfig represents the configuration for the boosting engine
type ClassifierConfig struct {
	Engine string
}

// DetectorConfig represents the configuration for the detection service
type DetectorConfig struct {
	AlertThreshold     float64
	WhitelistedDomains []string
}

// ServerConfig represents the configuration for the SMTP filter front end
type ServerConfig struct {
	ListenAddress  string
	BlockPhishing  bool
	BlockThreshold float64
	StatusHeader   string
	ScoreHeader    string
	RiskHeader     string
	RelayEnabled   bool
	RelayAddress   string
	RelayPort      int
}

// GetModel returns the model artifact configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Dir: c.GetString("model.dir"),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Engine: c.GetString("classifier.engine"),
	}
}

// GetDetector returns the detector configuration
func (c *Config) GetDetector() DetectorConfig {
	return DetectorConfig{
		AlertThreshold:     c.GetFloat64("detector.alert_threshold"),
		WhitelistedDomains: c.GetStringSlice("detector.whitelisted_domains"),
	}
}

// GetServer returns the SMTP filter configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:  c.GetString("server.listen_address"),
		BlockPhishing:  c.GetBool("server.block_phishing"),
		BlockThreshold: c.GetFloat64("server.block_threshold"),
		StatusHeader:   c.GetString("server.headers.status"),
		ScoreHeader:    c.GetString("server.headers.score"),
		RiskHeader:     c.GetString("server.headers.risk"),
		RelayEnabled:   c.GetBool("server.relay.enabled"),
		RelayAddress:   c.GetString("server.relay.address"),
		RelayPort:      c.GetInt("server.relay.port"),
	}
}
