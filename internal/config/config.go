package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	AttachDir    string `env:"ATTACH_DIR"`
	DeviceID     string `env:"DEVICE_ID"`

	// Лимиты отправки: мягкий бюджет байт на один POST и максимум файлов в батче.
	MaxPostSize   int64 `env:"MAX_POST_SIZE"`
	MaxBatchFiles int   `env:"MAX_BATCH_FILES"`
	// Квота локального хранилища записей (байт). 0 — без ограничения.
	MaxStorageBytes int64 `env:"MAX_STORAGE_BYTES"`
	// Интервал автоматической отправки очереди, сек. 0 — таймер выключен.
	SubmitInterval int `env:"SUBMIT_INTERVAL"`
	// Таймаут одного POST, сек. Намеренно большой: батчи могут быть до MaxPostSize.
	SubmitTimeout int `env:"SUBMIT_TIMEOUT"`

	Version bool `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи ключей доступа")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the FormKeeper server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "path to client SQLite DB directory")
	flag.StringVar(&cfg.AttachDir, "attach-dir", cfg.AttachDir, "directory for the filesystem attachment backend")
	flag.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier sent with every submission")
	flag.Int64Var(&cfg.MaxPostSize, "max-post-size", cfg.MaxPostSize, "soft byte budget for a single submission POST")
	flag.IntVar(&cfg.MaxBatchFiles, "max-batch-files", cfg.MaxBatchFiles, "maximum attachments per submission batch")
	flag.Int64Var(&cfg.MaxStorageBytes, "max-storage", cfg.MaxStorageBytes, "local record storage quota in bytes (0 = unlimited)")
	flag.IntVar(&cfg.SubmitInterval, "submit-interval", cfg.SubmitInterval, "automatic queue submission interval, seconds (0 = off)")
	flag.IntVar(&cfg.SubmitTimeout, "submit-timeout", cfg.SubmitTimeout, "single POST timeout, seconds")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	applyDefaults(cfg)
	return cfg
}

// applyDefaults заполняет значения по умолчанию; вынесено отдельно, чтобы
// тесты могли собрать Config без разбора флагов.
func applyDefaults(cfg *Config) {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = "webform"
	}
	if cfg.MaxPostSize <= 0 {
		cfg.MaxPostSize = 10 * 1000 * 1000 // держим POST в пределах ~10MB
	}
	if cfg.MaxBatchFiles <= 0 {
		cfg.MaxBatchFiles = 100
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 800 // секунд: большие батчи по медленной связи
	}

	// Fill client defaults if empty
	home, _ := os.UserHomeDir()
	if cfg.ClientDBPath == "" {
		cfg.ClientDBPath = filepath.Join(home, ".formkeeper")
	}
	if cfg.AttachDir == "" {
		cfg.AttachDir = filepath.Join(cfg.ClientDBPath, "attachments")
	}
}

// NewTestConfig строит конфиг с дефолтами без чтения env и флагов — для тестов.
func NewTestConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
