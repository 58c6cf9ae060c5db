package main

import (
	"sort"

	"network-ai-monitor/internal/alert"
	"network-ai-monitor/internal/client"
	"network-ai-monitor/internal/pipeline"
	"network-ai-monitor/internal/recorder"
	"network-ai-monitor/internal/rules"
	"network-ai-monitor/internal/utils"

	"github.com/sirupsen/logrus"
)

func monitorConfig(config *utils.MonitorConfig) pipeline.Config {
	return pipeline.Config{
		Interval:        config.Interval(),
		Cooldown:        config.Cooldown(),
		DispatchTimeout: config.DispatchTimeout(),
		WarmupTicks:     uint64(config.Monitor.WarmupTicks),
		AlertingEnabled: config.Alerting.Enabled,
	}
}

func buildSource(config *utils.MonitorConfig) (pipeline.CounterSource, error) {
	if config.Monitor.Source == "netlink" {
		return client.NewNetlinkCollector(config.Monitor.IgnoreInterfaces), nil
	}
	return client.NewNetDevCollector(config.Monitor.ProcPath, config.Monitor.IgnoreInterfaces)
}

func buildEngine(config *utils.MonitorConfig, logger *logrus.Logger) *rules.Engine {
	resolver := rules.NewClassResolver(config.Classification.Rules, config.Classification.DefaultClass)
	engine := rules.NewEngine(resolver, config.Thresholds, logger)
	logger.Infof("[Classifier] Loaded %d threshold profiles: %v", len(config.Thresholds), engine.Classes())
	return engine
}

// buildRecorders opens every configured backend. A backend that cannot be
// opened is logged and skipped so the monitor still runs.
func buildRecorders(config *utils.MonitorConfig, logger *logrus.Logger) recorder.Multi {
	var recs recorder.Multi

	for _, backend := range config.Recording.Backends {
		switch backend {
		case "csv":
			r, err := recorder.NewCSVRecorder(config.Recording.CSVPath)
			if err != nil {
				logger.Errorf("[Recorder] csv disabled: %v", err)
				continue
			}
			recs = append(recs, r)
		case "sqlite":
			r, err := recorder.NewSQLiteRecorder(config.Recording.SQLitePath)
			if err != nil {
				logger.Errorf("[Recorder] sqlite disabled: %v", err)
				continue
			}
			recs = append(recs, r)
		case "mysql":
			r, err := recorder.NewMySQLRecorder(config.Recording.MySQLDSN)
			if err != nil {
				logger.Errorf("[Recorder] mysql disabled: %v", err)
				continue
			}
			recs = append(recs, r)
		case "log":
			recs = append(recs, recorder.NewLogRecorder(logger))
		}
		logger.Infof("[Recorder] %s backend enabled", backend)
	}

	return recs
}

func buildNotifiers(config *utils.MonitorConfig, logger *logrus.Logger) *alert.Dispatcher {
	dispatcher := alert.NewDispatcher(logger)

	if config.Alerting.Channels.Log {
		dispatcher.Register("log", alert.NewLogAlertNotifier(logger))
	}

	if config.Alerting.Channels.Telegram && config.Alerting.Telegram.Enabled {
		dispatcher.Register("telegram", alert.NewTelegramNotifierWithTemplate(
			config.Alerting.Telegram.BotToken,
			config.Alerting.Telegram.ChatID,
			config.Alerting.Telegram.ParseMode,
			config.Alerting.Telegram.Enabled,
			config.Alerting.Telegram.MessageTemplate,
			logger,
		))
	}

	if config.Alerting.Channels.Email {
		email := config.Alerting.Email
		dispatcher.Register("email", alert.NewEmailNotifier(alert.EmailConfig{
			Host:      email.SMTPHost,
			Port:      email.SMTPPort,
			Username:  email.Username,
			Password:  email.Password,
			From:      email.From,
			To:        email.To,
			TLSVerify: email.TLSVerify,
		}, logger))
	}

	if dispatcher.Len() == 0 {
		logger.Warn("[Alert] No notifiers configured, alerts will only be counted")
	}
	return dispatcher
}

func sortedClasses(config *utils.MonitorConfig) []string {
	classes := make([]string, 0, len(config.Thresholds))
	for class := range config.Thresholds {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
