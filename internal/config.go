package internal

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Config struct {
	Host                 string        `env:"HOST,required=true" validate:"required"`
	Port                 int           `env:"PORT,required=true" validate:"min=1,max=65535"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=32" validate:"min=1"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

// Origins splits the allow-list. An empty list (or a "*" entry) means any
// origin may connect, which is the development posture.
func (c Config) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
