package config

type App struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"local_dev_secret"`
	JWTTTLHours int    `env:"JWT_TTL_HOURS" envDefault:"24"`
	Env         string `env:"APP_ENV" envDefault:"dev"`
}
