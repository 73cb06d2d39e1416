package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr      string        `koanf:"addr"`
		Password  string        `koanf:"password"`
		StatusTTL time.Duration `koanf:"status_ttl"`
	} `koanf:"redis"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		URL string `koanf:"url"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers          []string `koanf:"brokers"`
		GroupID          string   `koanf:"group_id"`
		FulfillmentTopic string   `koanf:"fulfillment_topic"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	// Gateway holds the payment-gateway merchant credentials and the
	// browser-facing redirect routes for the callback result page.
	Gateway struct {
		MerchantID      string        `koanf:"merchant_id"`
		MerchantSecret  string        `koanf:"merchant_secret"`
		ApprovalTimeout time.Duration `koanf:"approval_timeout"`
		CallbackTimeout time.Duration `koanf:"callback_timeout"`
		RedirectDelay   time.Duration `koanf:"redirect_delay"`
		SuccessPath     string        `koanf:"success_path"`
		FailPath        string        `koanf:"fail_path"`
		CancelPath      string        `koanf:"cancel_path"`
	} `koanf:"gateway"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env overlay (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix PAYAPI_, nested with __)
	// e.g. PAYAPI_MYSQL__DSN, PAYAPI_GATEWAY__MERCHANT_SECRET
	if err := k.Load(env.Provider("PAYAPI_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "PAYAPI_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Gateway.MerchantID == "" || c.Gateway.MerchantSecret == "" {
		return fmt.Errorf("gateway.merchant_id and gateway.merchant_secret required")
	}
	if c.Gateway.ApprovalTimeout <= 0 {
		return fmt.Errorf("gateway.approval_timeout must be positive")
	}
	if c.Gateway.SuccessPath == "" || c.Gateway.FailPath == "" || c.Gateway.CancelPath == "" {
		return fmt.Errorf("gateway redirect paths required")
	}
	return nil
}
