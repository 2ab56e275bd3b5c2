package config

type MetricsConfig struct {
	Addr string `yaml:"listen-addr"`
}

func (s *MetricsConfig) ListenAddr() string {
	return s.Addr
}
