package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Game     GameConfig
	Bot      BotConfig
	Auth     AuthConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах).
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах).
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// GameConfig содержит игровые параметры квеста
type GameConfig struct {
	// TeamSize: целевой размер команды, при достижении которого
	// назначается капитан. По умолчанию 7.
	TeamSize int `mapstructure:"team_size"`

	// PollIntervalSec: период опроса прогресса командными вотчерами в секундах.
	PollIntervalSec int `mapstructure:"poll_interval_sec"`

	// LeaderboardCacheSec: TTL кеша снапшота лидерборда в секундах.
	LeaderboardCacheSec int `mapstructure:"leaderboard_cache_sec"`

	// ProofsDir: каталог для загруженных фотоподтверждений.
	ProofsDir string `mapstructure:"proofs_dir"`
}

// BotConfig содержит настройки Telegram-бота
type BotConfig struct {
	// Token: токен бота. Используется и для отправки уведомлений,
	// и для проверки подписи initData мини-приложения.
	Token string `mapstructure:"token"`

	// Enabled: выключатель отправки уведомлений (в тестах и локальной
	// разработке уведомления уходят в лог).
	Enabled bool `mapstructure:"enabled"`
}

// AuthConfig содержит настройки аутентификации
type AuthConfig struct {
	// AppSecret: общий секрет для служебных запросов (заголовок x-app-secret)
	AppSecret string `mapstructure:"app_secret"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("game.team_size", 7)
	vip.SetDefault("game.poll_interval_sec", 5)
	vip.SetDefault("game.leaderboard_cache_sec", 5)
	vip.SetDefault("game.proofs_dir", "data/proofs")
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("database.sslmode", "disable")

	// 2. Привязываем переменные окружения ЯВНО
	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции Game
	vip.BindEnv("game.team_size", "GAME_TEAM_SIZE")
	vip.BindEnv("game.poll_interval_sec", "GAME_POLL_INTERVAL_SEC")
	vip.BindEnv("game.leaderboard_cache_sec", "GAME_LEADERBOARD_CACHE_SEC")
	vip.BindEnv("game.proofs_dir", "PROOFS_DIR")

	// Привязка для секции Bot
	vip.BindEnv("bot.token", "BOT_TOKEN")
	vip.BindEnv("bot.enabled", "BOT_ENABLED")

	// Привязка для секции Auth
	vip.BindEnv("auth.app_secret", "APP_SECRET")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// 3. Устанавливаем путь к файлу конфигурации
	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Не страшно, если файла нет: есть BindEnv
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит файл и привязанные env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database User: %s", cfg.Database.User)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Game Team Size: %d", cfg.Game.TeamSize)
		log.Printf("Game Poll Interval: %ds", cfg.Game.PollIntervalSec)
		log.Printf("Bot Enabled: %t", cfg.Bot.Enabled)
		log.Printf("Bot Token Set: %t", cfg.Bot.Token != "")
		log.Printf("App Secret Set: %t", cfg.Auth.AppSecret != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// 6. Проверка обязательных параметров
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if cfg.Auth.AppSecret == "" {
		return nil, fmt.Errorf("app secret is required in config (check APP_SECRET env var)")
	}
	if cfg.Game.TeamSize <= 0 {
		return nil, fmt.Errorf("game team size must be positive (check GAME_TEAM_SIZE env var)")
	}
	if cfg.Bot.Enabled && cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required when bot is enabled (check BOT_TOKEN env var)")
	}
	ginMode := vip.GetString("GIN_MODE")
	if ginMode != "debug" {
		if cfg.Database.Password == "" {
			return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
		}
	}

	return &cfg, nil
}
