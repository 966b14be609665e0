package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/parinaz-abbasi/Persianary/internal/config"
	"github.com/parinaz-abbasi/Persianary/internal/feed"
	"github.com/parinaz-abbasi/Persianary/internal/game"
	"github.com/parinaz-abbasi/Persianary/internal/wordbank"
	"github.com/parinaz-abbasi/Persianary/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Persianary - Real-time team drawing and guessing game

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                  Port to listen on (default: 8080)
  AUTO_ADVANCE_SECONDS  Auto-continue delay after a reveal (default: 8)
  SPEED_ROUND_SECONDS   Speed round duration (default: 60)
  EXPORT_ENABLED        Export finished games to file (default: true)
  EXPORT_FILE           Path for exported results (default: ./persianary-results.txt)
  WORD_BANK_FILE        JSON word bank overriding the built-in one (optional)
  KAFKA_ENDPOINT        Kafka broker for the game feed (optional, feed off when unset)
  KAFKA_TOPIC           Feed topic (default: persianary-games)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Persianary %s\n", version)
		return
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)

	cfg := config.FromEnv()
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		zerologlog.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	bank := wordbank.Default()
	if cfg.WordBankFile != "" {
		loaded, err := wordbank.Load(cfg.WordBankFile)
		if err != nil {
			zerologlog.Fatal().Err(err).Str("file", cfg.WordBankFile).Msg("failed to load word bank")
		}
		bank = loaded
	}

	pub := feed.New(cfg.KafkaEndpoint, cfg.KafkaTopic)
	defer pub.Close()

	sock := ws.New()
	reg := game.NewRegistry(feed.NewTee(sock, pub), game.Options{
		DefaultBank:       bank,
		AutoAdvance:       time.Duration(cfg.AutoAdvanceSeconds) * time.Second,
		SpeedRoundSeconds: cfg.SpeedRoundSeconds,
		ExportEnabled:     cfg.ExportEnabled,
		ExportFile:        cfg.ExportFile,
	})
	sock.SetRegistry(reg)
	io := sock.Mount(r)
	defer io.Close()

	zerologlog.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		zerologlog.Fatal().Err(err).Msg("server exited")
	}
}
