package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "AUTO_ADVANCE_SECONDS", "SPEED_ROUND_SECONDS", "EXPORT_ENABLED",
		"EXPORT_FILE", "KAFKA_ENDPOINT", "KAFKA_TOPIC", "WORD_BANK_FILE",
	} {
		t.Setenv(k, "")
	}

	c := FromEnv()
	if c.Port != "8080" {
		t.Errorf("Port = %s, want 8080", c.Port)
	}
	if c.AutoAdvanceSeconds != 8 {
		t.Errorf("AutoAdvanceSeconds = %d, want 8", c.AutoAdvanceSeconds)
	}
	if c.SpeedRoundSeconds != 60 {
		t.Errorf("SpeedRoundSeconds = %d, want 60", c.SpeedRoundSeconds)
	}
	if !c.ExportEnabled {
		t.Error("ExportEnabled should default to true")
	}
	if c.KafkaEndpoint != "" {
		t.Error("KafkaEndpoint should default to empty (feed off)")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("AUTO_ADVANCE_SECONDS", "15")
	t.Setenv("EXPORT_ENABLED", "false")
	t.Setenv("KAFKA_ENDPOINT", "broker:9092")

	c := FromEnv()
	if c.Port != "3000" {
		t.Errorf("Port = %s, want 3000", c.Port)
	}
	if c.AutoAdvanceSeconds != 15 {
		t.Errorf("AutoAdvanceSeconds = %d, want 15", c.AutoAdvanceSeconds)
	}
	if c.ExportEnabled {
		t.Error("ExportEnabled should be false")
	}
	if c.KafkaEndpoint != "broker:9092" {
		t.Errorf("KafkaEndpoint = %s, want broker:9092", c.KafkaEndpoint)
	}
}

func TestFromEnvIgnoresBadIntegers(t *testing.T) {
	t.Setenv("AUTO_ADVANCE_SECONDS", "soon")
	c := FromEnv()
	if c.AutoAdvanceSeconds != 8 {
		t.Errorf("AutoAdvanceSeconds = %d, want default 8", c.AutoAdvanceSeconds)
	}
}
