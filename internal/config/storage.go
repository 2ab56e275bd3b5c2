package config

type StorageConfig struct {
	Kind   string `yaml:"backend"`
	Key    string `yaml:"key"`
	File   string `yaml:"file-path"`
	SQLite string `yaml:"sqlite-path"`
}

func (s *StorageConfig) Backend() string {
	return s.Kind
}

func (s *StorageConfig) SnapshotKey() string {
	return s.Key
}

func (s *StorageConfig) FilePath() string {
	return s.File
}

func (s *StorageConfig) SQLitePath() string {
	return s.SQLite
}
