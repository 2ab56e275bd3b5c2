package config

// MemcachedConfig lists the nodes used by the memcache snapshot backend.
type MemcachedConfig struct {
	NodeHosts []string `yaml:"hosts"`
}

func (s *MemcachedConfig) Hosts() []string {
	return s.NodeHosts
}
