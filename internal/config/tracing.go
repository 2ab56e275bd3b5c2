package config

type TracingConfig struct {
	Agent   string `yaml:"agent-host-port"`
	Service string `yaml:"service-name"`
}

// Enabled is false when no jaeger agent is configured.
func (s *TracingConfig) Enabled() bool {
	return s.Agent != ""
}

func (s *TracingConfig) AgentHostPort() string {
	return s.Agent
}

func (s *TracingConfig) ServiceName() string {
	return s.Service
}
