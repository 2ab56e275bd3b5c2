package config

import "time"

type AppConfig struct {
	TimeZone    string `yaml:"timezone"`
	AllowFuture bool   `yaml:"allow-future-dates"`

	location *time.Location
}

// Location is the zone "today" and the current month are evaluated in.
func (s *AppConfig) Location() *time.Location {
	return s.location
}

func (s *AppConfig) AllowFutureDates() bool {
	return s.AllowFuture
}
