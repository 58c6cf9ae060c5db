package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"network-ai-monitor/internal/model"
	"network-ai-monitor/internal/rules"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type MonitorConfig struct {
	Application    ApplicationYAMLConfig             `yaml:"application"`
	Monitor        SamplingYAMLConfig                `yaml:"monitor"`
	Classification ClassificationYAMLConfig          `yaml:"classification"`
	Thresholds     map[string]model.ThresholdProfile `yaml:"thresholds"`
	Alerting       AlertingYAMLConfig                `yaml:"alerting"`
	Recording      RecordingYAMLConfig               `yaml:"recording"`
	API            APIYAMLConfig                     `yaml:"api"`
	Logging        LoggingYAMLConfig                 `yaml:"logging"`
}

type ApplicationYAMLConfig struct {
	MetricsPort string `yaml:"metrics_port"`
	APIPort     string `yaml:"api_port"`
	APIEnabled  bool   `yaml:"api_enabled"`
	EnvFile     string `yaml:"env_file"`
}

type SamplingYAMLConfig struct {
	IntervalSeconds  int      `yaml:"interval_seconds"`
	WarmupTicks      int      `yaml:"warmup_ticks"`
	Source           string   `yaml:"source"`
	ProcPath         string   `yaml:"proc_path"`
	IgnoreInterfaces []string `yaml:"ignore_interfaces"`
}

type ClassificationYAMLConfig struct {
	Rules        []rules.ClassRule `yaml:"rules"`
	DefaultClass string            `yaml:"default_class"`
	// RulesFile points to a YAML or JSON file whose rules replace the inline ones.
	RulesFile string `yaml:"rules_file"`
}

type AlertingYAMLConfig struct {
	Enabled                bool               `yaml:"enabled"`
	CooldownSeconds        int                `yaml:"cooldown_seconds"`
	DispatchTimeoutSeconds int                `yaml:"dispatch_timeout_seconds"`
	Channels               AlertChannelsYAML  `yaml:"channels"`
	Telegram               TelegramYAMLConfig `yaml:"telegram"`
	Email                  EmailYAMLConfig    `yaml:"email"`
}

type AlertChannelsYAML struct {
	Log      bool `yaml:"log"`
	Telegram bool `yaml:"telegram"`
	Email    bool `yaml:"email"`
}

type TelegramYAMLConfig struct {
	BotToken        string `yaml:"bot_token"`
	ChatID          string `yaml:"chat_id"`
	ParseMode       string `yaml:"parse_mode"`
	Enabled         bool   `yaml:"enabled"`
	MessageTemplate string `yaml:"message_template,omitempty"`
}

type EmailYAMLConfig struct {
	SMTPHost  string   `yaml:"smtp_host"`
	SMTPPort  int      `yaml:"smtp_port"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	From      string   `yaml:"from"`
	To        []string `yaml:"to"`
	TLSVerify bool     `yaml:"tls_verify"`
}

type RecordingYAMLConfig struct {
	Backends   []string `yaml:"backends"`
	CSVPath    string   `yaml:"csv_path"`
	SQLitePath string   `yaml:"sqlite_path"`
	MySQLDSN   string   `yaml:"mysql_dsn"`
}

type APIYAMLConfig struct {
	HistorySize int `yaml:"history_size"`
	MaxAlerts   int `yaml:"max_alerts"`
}

type LoggingYAMLConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

func LoadMonitorConfig(filename string) (*MonitorConfig, error) {
	if filename == "" {
		filename = "configs/netmon.yaml"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
	}

	// Start from defaults so a partial file keeps the documented behaviour.
	config := GetDefaultMonitorConfig()
	config.Thresholds = nil
	config.Classification.Rules = nil
	config.Recording.Backends = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %v", filename, err)
	}

	if err := config.mergeClassificationFile(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}

	return config, nil
}

func (c *MonitorConfig) Validate() error {
	if c.Application.MetricsPort == "" {
		c.Application.MetricsPort = "9108"
	}
	if c.Application.APIPort == "" {
		c.Application.APIPort = "5001"
	}

	if c.Monitor.IntervalSeconds <= 0 {
		c.Monitor.IntervalSeconds = 5
	}
	if c.Monitor.WarmupTicks <= 0 {
		c.Monitor.WarmupTicks = 2
	}
	if c.Monitor.ProcPath == "" {
		c.Monitor.ProcPath = "/proc"
	}
	switch c.Monitor.Source {
	case "":
		c.Monitor.Source = "procfs"
	case "procfs", "netlink":
	default:
		return fmt.Errorf("unknown counter source %q", c.Monitor.Source)
	}

	if c.Classification.DefaultClass == "" {
		c.Classification.DefaultClass = rules.DefaultClass
	}
	if len(c.Classification.Rules) == 0 {
		c.Classification.Rules = rules.DefaultClassRules()
	}
	for i, r := range c.Classification.Rules {
		if r.Class == "" {
			return fmt.Errorf("classification rule %d has no class", i)
		}
		if len(r.Contains) == 0 {
			return fmt.Errorf("classification rule for %s has no substrings", r.Class)
		}
	}

	if c.Thresholds == nil {
		c.Thresholds = make(map[string]model.ThresholdProfile)
	}
	for class, p := range DefaultThresholds() {
		if _, ok := c.Thresholds[class]; !ok {
			c.Thresholds[class] = p
		}
	}
	for class, p := range c.Thresholds {
		if p.InboundLimitMbps <= 0 || p.OutboundLimitMbps <= 0 {
			return fmt.Errorf("thresholds for %s must be positive (in=%v out=%v)", class, p.InboundLimitMbps, p.OutboundLimitMbps)
		}
	}
	if _, ok := c.Thresholds[c.Classification.DefaultClass]; !ok {
		c.Thresholds[c.Classification.DefaultClass] = c.Thresholds[rules.DefaultClass]
	}

	if c.Alerting.CooldownSeconds <= 0 {
		c.Alerting.CooldownSeconds = 60
	}
	if c.Alerting.DispatchTimeoutSeconds <= 0 {
		c.Alerting.DispatchTimeoutSeconds = 15
	}
	if c.Alerting.Email.SMTPPort <= 0 {
		c.Alerting.Email.SMTPPort = 587
	}

	if len(c.Recording.Backends) == 0 {
		c.Recording.Backends = []string{"csv", "log"}
	}
	for i, b := range c.Recording.Backends {
		b = strings.ToLower(strings.TrimSpace(b))
		switch b {
		case "csv", "sqlite", "mysql", "log":
		default:
			return fmt.Errorf("unknown recording backend %q", b)
		}
		c.Recording.Backends[i] = b
	}
	if c.Recording.CSVPath == "" {
		c.Recording.CSVPath = "bandwidth_log.csv"
	}
	if c.Recording.SQLitePath == "" {
		c.Recording.SQLitePath = "netmon.db"
	}

	if c.API.HistorySize <= 0 {
		c.API.HistorySize = 20
	}
	if c.API.MaxAlerts <= 0 {
		c.API.MaxAlerts = 500
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

func (c *MonitorConfig) mergeClassificationFile() error {
	if c.Classification.RulesFile == "" {
		return nil
	}
	file, err := rules.LoadClassification(c.Classification.RulesFile)
	if err != nil {
		return fmt.Errorf("failed to load classification file: %v", err)
	}
	if len(file.Rules) > 0 {
		c.Classification.Rules = file.Rules
	}
	if file.DefaultClass != "" {
		c.Classification.DefaultClass = file.DefaultClass
	}
	if c.Thresholds == nil {
		c.Thresholds = make(map[string]model.ThresholdProfile)
	}
	for class, p := range file.Thresholds {
		c.Thresholds[class] = p
	}
	return nil
}

// ApplyEnv loads an optional .env file and lets NETMON_* variables override secrets.
func (c *MonitorConfig) ApplyEnv() error {
	envFile := c.Application.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file %s: %v", envFile, err)
	}

	setString(&c.Alerting.Telegram.BotToken, "NETMON_TELEGRAM_BOT_TOKEN")
	setString(&c.Alerting.Telegram.ChatID, "NETMON_TELEGRAM_CHAT_ID")
	setString(&c.Alerting.Email.SMTPHost, "NETMON_SMTP_HOST")
	setString(&c.Alerting.Email.Username, "NETMON_SMTP_USERNAME")
	setString(&c.Alerting.Email.Password, "NETMON_SMTP_PASSWORD")
	setString(&c.Alerting.Email.From, "NETMON_SMTP_FROM")
	setString(&c.Recording.MySQLDSN, "NETMON_MYSQL_DSN")
	if v := os.Getenv("NETMON_SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid NETMON_SMTP_PORT %q: %v", v, err)
		}
		c.Alerting.Email.SMTPPort = port
	}
	if v := os.Getenv("NETMON_SMTP_TO"); v != "" {
		c.Alerting.Email.To = splitList(v)
	}
	return nil
}

func (c *MonitorConfig) Interval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

func (c *MonitorConfig) Cooldown() time.Duration {
	return time.Duration(c.Alerting.CooldownSeconds) * time.Second
}

func (c *MonitorConfig) DispatchTimeout() time.Duration {
	return time.Duration(c.Alerting.DispatchTimeoutSeconds) * time.Second
}

// DefaultThresholds returns the stock per-class limits in Mbps
func DefaultThresholds() map[string]model.ThresholdProfile {
	return map[string]model.ThresholdProfile{
		"wifi":     {InboundLimitMbps: 1.0, OutboundLimitMbps: 0.5},
		"ethernet": {InboundLimitMbps: 5.0, OutboundLimitMbps: 2.0},
		"other":    {InboundLimitMbps: 10.0, OutboundLimitMbps: 5.0},
	}
}

// GetDefaultMonitorConfig returns a default MonitorConfig
func GetDefaultMonitorConfig() *MonitorConfig {
	return &MonitorConfig{
		Application: ApplicationYAMLConfig{
			MetricsPort: "9108",
			APIPort:     "5001",
			APIEnabled:  true,
		},
		Monitor: SamplingYAMLConfig{
			IntervalSeconds:  5,
			WarmupTicks:      2,
			Source:           "procfs",
			ProcPath:         "/proc",
			IgnoreInterfaces: []string{"lo"},
		},
		Classification: ClassificationYAMLConfig{
			Rules:        rules.DefaultClassRules(),
			DefaultClass: rules.DefaultClass,
		},
		Thresholds: DefaultThresholds(),
		Alerting: AlertingYAMLConfig{
			Enabled:                true,
			CooldownSeconds:        60,
			DispatchTimeoutSeconds: 15,
			Channels: AlertChannelsYAML{
				Log: true,
			},
			Telegram: TelegramYAMLConfig{
				ParseMode: "Markdown",
			},
			Email: EmailYAMLConfig{
				SMTPHost:  "smtp.gmail.com",
				SMTPPort:  587,
				TLSVerify: true,
			},
		},
		Recording: RecordingYAMLConfig{
			Backends:   []string{"csv", "log"},
			CSVPath:    "bandwidth_log.csv",
			SQLitePath: "netmon.db",
		},
		API: APIYAMLConfig{
			HistorySize: 20,
			MaxAlerts:   500,
		},
		Logging: LoggingYAMLConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
