// Package config loads and validates the board's configuration at startup.
// Defaults, then an optional YAML file, then BOARD_* environment variables.
// Fail-fast: a missing database URL or backend base URL is an error.
package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"jobmate/recruiting-board/internal/gateway"
	"jobmate/recruiting-board/internal/scheduler"
)

// Config holds all runtime configuration for the board.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Log      LogConfig      `mapstructure:"log"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig points at the recruiting backend.
type ServerConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	CSRFToken string        `mapstructure:"csrf_token"`
	SessionID string        `mapstructure:"session_id"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PathsConfig overrides the backend endpoint paths.
type PathsConfig struct {
	Update             string `mapstructure:"update"`
	BulkUpdate         string `mapstructure:"bulk_update"`
	AssignSupervisor   string `mapstructure:"assign_supervisor"`
	AttendanceCheck    string `mapstructure:"attendance_check"`
	AttendanceRegister string `mapstructure:"attendance_register"`
	History            string `mapstructure:"history"`
	Messaging          string `mapstructure:"messaging"`
	MessagingSend      string `mapstructure:"messaging_send"`
	MessagingTasks     string `mapstructure:"messaging_tasks"`
	TaskDetail         string `mapstructure:"task_detail"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig is optional. Without a URL the change feed is disabled.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type ScheduleConfig struct {
	Refresh string `mapstructure:"refresh"`
	Tasks   string `mapstructure:"tasks"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from path (optional) and the environment.
// Env overrides use the BOARD_ prefix with dots replaced by underscores, for
// example BOARD_SERVER_BASE_URL. DATABASE_URL and REDIS_URL are also read
// unprefixed.
func Load(path string) (Config, error) {
	v := viper.New()

	d := gateway.DefaultPaths()
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("paths.update", d.Update)
	v.SetDefault("paths.bulk_update", d.BulkUpdate)
	v.SetDefault("paths.assign_supervisor", d.AssignSupervisor)
	v.SetDefault("paths.attendance_check", d.AttendanceCheck)
	v.SetDefault("paths.attendance_register", d.AttendanceRegister)
	v.SetDefault("paths.history", d.History)
	v.SetDefault("paths.messaging", d.Messaging)
	v.SetDefault("paths.messaging_send", d.MessagingSend)
	v.SetDefault("paths.messaging_tasks", d.MessagingTasks)
	v.SetDefault("paths.task_detail", d.TaskDetail)
	v.SetDefault("schedule.refresh", "@every 1m")
	v.SetDefault("schedule.tasks", "@every 30s")
	v.SetDefault("log.path", "board.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("export.dir", "exports")

	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("database.url", "BOARD_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "BOARD_REDIS_URL", "REDIS_URL")
	// Unmarshal only sees env values for keys viper already knows about.
	for _, k := range []string{"server.base_url", "server.csrf_token", "server.session_id"} {
		_ = v.BindEnv(k)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || !u.IsAbs() {
		return errors.Errorf("server.base_url must be an absolute URL, got %q", c.Server.BaseURL)
	}
	if c.Server.Timeout <= 0 {
		return errors.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if err := scheduler.Validate(c.Schedule.Refresh); err != nil {
		return errors.Wrap(err, "schedule.refresh")
	}
	if err := scheduler.Validate(c.Schedule.Tasks); err != nil {
		return errors.Wrap(err, "schedule.tasks")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// GatewayPaths converts the configured paths.
func (c Config) GatewayPaths() gateway.Paths {
	p := c.Paths
	return gateway.Paths{
		Update:             p.Update,
		BulkUpdate:         p.BulkUpdate,
		AssignSupervisor:   p.AssignSupervisor,
		AttendanceCheck:    p.AttendanceCheck,
		AttendanceRegister: p.AttendanceRegister,
		History:            p.History,
		Messaging:          p.Messaging,
		MessagingSend:      p.MessagingSend,
		MessagingTasks:     p.MessagingTasks,
		TaskDetail:         p.TaskDetail,
	}
}
