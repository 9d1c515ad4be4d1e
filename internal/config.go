package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string `env:"HOST,default=0.0.0.0"`
	Port                 int    `env:"PORT,default=8080"`
	BadgerFilepath       string `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string `env:"LOG_LEVEL,default=INFO"`
	EncryptionSecret     string `env:"ENCRYPTION_SECRET,required=true"`
	JWTSecret            string `env:"JWT_SECRET,required=true"`
	ConnectionBufferSize int    `env:"CONNECTION_BUFFER_SIZE,default=64"`
	HistoryLimit         int    `env:"HISTORY_LIMIT,default=200"`
	EnableModeration     bool   `env:"ENABLE_MODERATION,default=true"`
	CharReplacement      string `env:"CHARACTER_REPLACEMENT,default=*"`
	DebugPort            int    `env:"DEBUG_PORT,default=8081"`

	AuthTokenDuration      time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	GCInterval             time.Duration `env:"GC_INTERVAL,default=10m"`
	PresenceReportInterval time.Duration `env:"PRESENCE_REPORT_INTERVAL,default=1m"`
	ShutdownTimeout        time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
