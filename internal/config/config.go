package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:plaques.db?cache=shared"`

	Pesepay  Pesepay  `envPrefix:"PESEPAY_"`
	Store    Store    `envPrefix:"STORE_"`
	Checkout Checkout `envPrefix:"CHECKOUT_"`
	Poll     Poll     `envPrefix:"POLL_"`
}

// Pesepay is the payments-engine directory API (currencies, methods).
type Pesepay struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.pesepay.com/api/payments-engine/v1"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Store is the plaque store's payments API (submission, status, purchases).
type Store struct {
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	// ServiceToken authenticates background reconciliation when no user
	// session is driving it. Optional.
	ServiceToken string `env:"SERVICE_TOKEN"`
}

type Checkout struct {
	// SupportContact receives instructional payment hand-off messages.
	SupportContact string `env:"SUPPORT_CONTACT" envDefault:"+263714219938"`
}

type Poll struct {
	// Interval enables timer-driven reconciliation when > 0.
	Interval time.Duration `env:"INTERVAL"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
