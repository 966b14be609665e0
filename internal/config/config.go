package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	AutoAdvanceSeconds int
	SpeedRoundSeconds  int
	ExportEnabled      bool
	ExportFile         string
	KafkaEndpoint      string
	KafkaTopic         string
	WordBankFile       string
}

func FromEnv() Config {
	_ = godotenv.Load()

	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.AutoAdvanceSeconds = getint("AUTO_ADVANCE_SECONDS", 8)
	c.SpeedRoundSeconds = getint("SPEED_ROUND_SECONDS", 60)
	c.ExportEnabled = getenv("EXPORT_ENABLED", "true") == "true"
	c.ExportFile = getenv("EXPORT_FILE", "./persianary-results.txt")
	c.KafkaEndpoint = os.Getenv("KAFKA_ENDPOINT")
	c.KafkaTopic = getenv("KAFKA_TOPIC", "persianary-games")
	c.WordBankFile = os.Getenv("WORD_BANK_FILE")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
