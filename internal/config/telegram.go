package config

type TelegramConfig struct {
	ApiToken string `yaml:"token"`
	Owner    int64  `yaml:"owner-id"`
}

func (t *TelegramConfig) Token() string {
	return t.ApiToken
}

// OwnerID is the only chat user the bot answers. Zero answers nobody.
func (t *TelegramConfig) OwnerID() int64 {
	return t.Owner
}

func (t *TelegramConfig) OwnerConfigured() bool {
	return t.Owner != 0
}
