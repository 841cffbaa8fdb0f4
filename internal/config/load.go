package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const envPrefix = "FGQL"

// Load reads configuration with the precedence flags > env > config file > defaults.
// Env vars use the FGQL_ prefix with underscores, e.g. FGQL_DATABASE_DSN,
// FGQL_STORAGE_BUCKET, FGQL_SERVER_PORT.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	registerFlags()
	if !pflag.Parsed() {
		pflag.Parse()
	}
	if err := bindFlags(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile, _ := pflag.CommandLine.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := resolvePassword(&cfg.Database); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key, including empty defaults for optional
// values: AutomaticEnv only surfaces keys viper already knows about when
// unmarshalling into a struct.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.password_file", "")
	v.SetDefault("database.password_prompt", false)
	v.SetDefault("database.database", "ispyb")
	v.SetDefault("database.pool.max_open", 25)
	v.SetDefault("database.pool.max_idle", 5)
	v.SetDefault("database.pool.max_lifetime", 5*time.Minute)
	v.SetDefault("database.connection_timeout", 30*time.Second)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.graphiql_enabled", true)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.health_check_timeout", 5*time.Second)

	v.SetDefault("storage.endpoint_url", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "undefined")
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("storage.url_expiry", 15*time.Minute)

	v.SetDefault("observability.service_name", "fluorescence-graphql")
	v.SetDefault("observability.service_version", "")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.metrics_enabled", false)
	v.SetDefault("observability.tracing_enabled", false)
	v.SetDefault("observability.trace_sample_ratio", 1.0)
	v.SetDefault("observability.otlp.endpoint", "")
	v.SetDefault("observability.otlp.protocol", "grpc")
	v.SetDefault("observability.otlp.insecure", false)
	v.SetDefault("observability.otlp.tls_cert_file", "")
	v.SetDefault("observability.otlp.timeout", 10*time.Second)
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
	v.SetDefault("observability.logging.exports_enabled", false)
}

func registerFlags() {
	if pflag.Lookup("config") == nil {
		pflag.String("config", "", "Path to configuration file")
	}
	if pflag.Lookup("port") == nil {
		pflag.Int("port", 0, "HTTP listen port (overrides config)")
	}
	if pflag.Lookup("log-level") == nil {
		pflag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	}
}

func bindFlags(v *viper.Viper) error {
	if flag := pflag.Lookup("port"); flag != nil && flag.Changed {
		if err := v.BindPFlag("server.port", flag); err != nil {
			return fmt.Errorf("failed to bind port flag: %w", err)
		}
	}
	if flag := pflag.Lookup("log-level"); flag != nil && flag.Changed {
		if err := v.BindPFlag("observability.logging.level", flag); err != nil {
			return fmt.Errorf("failed to bind log-level flag: %w", err)
		}
	}
	return nil
}

// resolvePassword fills DatabaseConfig.Password from a secrets file or an
// interactive prompt. The prompt requires a terminal on stdin.
func resolvePassword(db *DatabaseConfig) error {
	if db.Password != "" || db.ConnectionString != "" {
		return nil
	}
	if db.PasswordFile != "" {
		raw, err := os.ReadFile(db.PasswordFile)
		if err != nil {
			return fmt.Errorf("failed to read database password file: %w", err)
		}
		db.Password = strings.TrimRight(string(raw), "\r\n")
		return nil
	}
	if db.PasswordPrompt {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("database password prompt requires an interactive terminal")
		}
		fmt.Fprintf(os.Stderr, "Database password for %s: ", db.User)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read database password: %w", err)
		}
		db.Password = string(raw)
	}
	return nil
}

// DSN builds the go-sql-driver DSN. parseTime and UTC location are always
// forced so naive store timestamps scan as UTC-tagged time values.
func (d DatabaseConfig) DSN() (string, error) {
	if d.ConnectionString != "" {
		parsed, err := mysql.ParseDSN(d.ConnectionString)
		if err != nil {
			return "", fmt.Errorf("invalid database DSN: %w", err)
		}
		parsed.ParseTime = true
		parsed.Loc = time.UTC
		return parsed.FormatDSN(), nil
	}

	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}
