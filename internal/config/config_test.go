package config

import "testing"

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{Sink: SinkConfig{Driver: "mysql"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestValidateAcceptsKnownDrivers(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite", "Postgres", "SQLite"} {
		cfg := &Config{Sink: SinkConfig{Driver: driver}}
		if err := validate(cfg); err != nil {
			t.Errorf("driver %q should be valid: %v", driver, err)
		}
	}
}
