package config

type AMQPConfig struct {
	BrokerURL    string `yaml:"url"`
	ExchangeName string `yaml:"exchange"`
	QueueName    string `yaml:"queue"`
}

func (s *AMQPConfig) Enabled() bool {
	return s.BrokerURL != ""
}

func (s *AMQPConfig) URL() string {
	return s.BrokerURL
}

func (s *AMQPConfig) Exchange() string {
	return s.ExchangeName
}

func (s *AMQPConfig) Queue() string {
	return s.QueueName
}
