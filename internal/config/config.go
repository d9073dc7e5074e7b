package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"ENV"`
	LogLevel    string          `mapstructure:"LOG_LEVEL"`
	DBDSN       string          `mapstructure:"DB_DSN"`
	HTTPPort    int             `mapstructure:"HTTP_PORT"`
	Telegram    TelegramConfig  `mapstructure:",squash"`
	Zoom        ZoomConfig      `mapstructure:",squash"`
	Scheduler   SchedulerConfig `mapstructure:",squash"`
}

// TelegramConfig настройки бота-мессенджера. Пустой токен отключает реальную отправку.
type TelegramConfig struct {
	Token string `mapstructure:"TELEGRAM_TOKEN"`
}

// ZoomConfig настройки Server-to-Server OAuth приложения видео-провайдера
type ZoomConfig struct {
	AccountID    string `mapstructure:"ZOOM_ACCOUNT_ID"`
	ClientID     string `mapstructure:"ZOOM_CLIENT_ID"`
	ClientSecret string `mapstructure:"ZOOM_CLIENT_SECRET"`
	APIURL       string `mapstructure:"ZOOM_API_URL"`
	TokenURL     string `mapstructure:"ZOOM_TOKEN_URL"`
}

// Enabled сообщает, заданы ли учётные данные
func (z ZoomConfig) Enabled() bool {
	return z.AccountID != "" && z.ClientID != "" && z.ClientSecret != ""
}

// SchedulerConfig время срабатывания регулярных задач (локальное время из настройки timezone)
type SchedulerConfig struct {
	DailyAt    string `mapstructure:"SCHEDULER_DAILY_AT"`
	WeeklyDay  string `mapstructure:"SCHEDULER_WEEKLY_DAY"`
	WeeklyAt   string `mapstructure:"SCHEDULER_WEEKLY_AT"`
	weeklyDay  time.Weekday
	dailyHour  int
	dailyMin   int
	weeklyHour int
	weeklyMin  int
}

// DailyTime возвращает час и минуту ежедневного запуска
func (s SchedulerConfig) DailyTime() (int, int) {
	return s.dailyHour, s.dailyMin
}

// WeeklyTime возвращает день недели, час и минуту еженедельного запуска
func (s SchedulerConfig) WeeklyTime() (time.Weekday, int, int) {
	return s.weeklyDay, s.weeklyHour, s.weeklyMin
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	v := viper.New()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("ZOOM_ACCOUNT_ID", "")
	v.SetDefault("ZOOM_CLIENT_ID", "")
	v.SetDefault("ZOOM_CLIENT_SECRET", "")
	v.SetDefault("ZOOM_API_URL", "https://api.zoom.us/v2")
	v.SetDefault("ZOOM_TOKEN_URL", "https://zoom.us/oauth/token")
	v.SetDefault("SCHEDULER_DAILY_AT", "06:00")
	v.SetDefault("SCHEDULER_WEEKLY_DAY", "sunday")
	v.SetDefault("SCHEDULER_WEEKLY_AT", "05:00")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded\n")

	return &cfg, nil
}

// Validate проверяет обязательные поля и разбирает время запуска задач
func (c *Config) Validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}

	var err error
	c.Scheduler.dailyHour, c.Scheduler.dailyMin, err = ParseClock(c.Scheduler.DailyAt)
	if err != nil {
		return fmt.Errorf("SCHEDULER_DAILY_AT: %w", err)
	}
	c.Scheduler.weeklyHour, c.Scheduler.weeklyMin, err = ParseClock(c.Scheduler.WeeklyAt)
	if err != nil {
		return fmt.Errorf("SCHEDULER_WEEKLY_AT: %w", err)
	}
	c.Scheduler.weeklyDay, err = ParseWeekday(c.Scheduler.WeeklyDay)
	if err != nil {
		return fmt.Errorf("SCHEDULER_WEEKLY_DAY: %w", err)
	}

	return nil
}

// ParseClock разбирает строку вида "06:00"
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseWeekday разбирает название дня недели ("monday", "Mon") или его номер ("1")
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '6' {
		return time.Weekday(s[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
