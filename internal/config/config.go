// Package config carrega a configuração da API a partir de .env e do ambiente.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config reúne os parâmetros de execução.
type Config struct {
	HTTPAddr string

	DatabaseURL string
	DBHost      string
	DBPort      uint
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLOff    bool
	DBMaxConns  int

	JWTSecret string
	JWTIssuer string

	CORSOrigins []string

	CronTokenHash string
	WebhookURL    string

	DiasTolerancia int

	StatusPagamento string
	StatusParcela   string
	StatusDetalhes  string

	LogLevel slog.Level
}

// Load lê o arquivo .env (se existir) e depois as variáveis de ambiente.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ler .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv monta a configuração a partir de uma função de lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		HTTPAddr:        get("HTTP_ADDR", ":8080"),
		DatabaseURL:     get("DATABASE_URL", ""),
		DBHost:          get("DB_HOST", "localhost"),
		DBUser:          get("DB_USER", "postgres"),
		DBPassword:      get("DB_PASSWORD", ""),
		DBName:          get("DB_NAME", "conciliacao"),
		DBSSLOff:        get("DB_SSL_MODE_DISABLE", "false") == "true",
		JWTSecret:       get("AUTH_JWT_SECRET", ""),
		JWTIssuer:       get("AUTH_ISSUER", ""),
		CronTokenHash:   get("CRON_TOKEN_HASH", ""),
		WebhookURL:      get("NOTIFICACAO_WEBHOOK_URL", ""),
		StatusPagamento: get("STATUS_PROCESSO_PAGAMENTO", "CONCLUIDO"),
		StatusParcela:   get("STATUS_PROCESSO_PARCELA", "CONCLUIDO"),
		StatusDetalhes:  get("STATUS_PROCESSO_DETALHES", "ACORDO_FIRMADO"),
	}

	port, err := strconv.ParseUint(get("DB_PORT", "5432"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("DB_PORT inválida: %w", err)
	}
	cfg.DBPort = uint(port)

	if cfg.DBMaxConns, err = strconv.Atoi(get("DB_MAX_CONNS", "10")); err != nil || cfg.DBMaxConns < 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS inválida: %q", getenv("DB_MAX_CONNS"))
	}
	if cfg.DiasTolerancia, err = strconv.Atoi(get("ACORDO_DIAS_TOLERANCIA", "90")); err != nil || cfg.DiasTolerancia < 0 {
		return nil, fmt.Errorf("ACORDO_DIAS_TOLERANCIA inválida: %q", getenv("ACORDO_DIAS_TOLERANCIA"))
	}

	for _, o := range strings.Split(get("CORS_ORIGINS", "*"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	for key, v := range map[string]string{
		"STATUS_PROCESSO_PAGAMENTO": cfg.StatusPagamento,
		"STATUS_PROCESSO_PARCELA":   cfg.StatusParcela,
		"STATUS_PROCESSO_DETALHES":  cfg.StatusDetalhes,
	} {
		if v != "CONCLUIDO" && v != "ACORDO_FIRMADO" {
			return nil, fmt.Errorf("%s deve ser CONCLUIDO ou ACORDO_FIRMADO, recebido %q", key, v)
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL inválido: %w", err)
	}
	return cfg, nil
}

// DSN devolve DATABASE_URL ou monta a string de conexão a partir das partes.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	if c.DBSSLOff {
		dsn += " sslmode=disable"
	}
	return dsn
}

// ExigirServidor valida o que só é obrigatório para subir a API.
func (c *Config) ExigirServidor() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET não definida")
	}
	return nil
}
