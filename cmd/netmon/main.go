package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"network-ai-monitor/internal/alert"
	"network-ai-monitor/internal/api"
	"network-ai-monitor/internal/pipeline"
	"network-ai-monitor/internal/utils"

	"github.com/prometheus/common/version"
)

const programName = "netmon"

func main() {
	var (
		configFile  = flag.String("config", "configs/netmon.yaml", "Configuration file path (YAML)")
		showVersion = flag.Bool("version", false, "Show version information")
		testNotify  = flag.Bool("test-notify", false, "Send a test message through the configured notifiers")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Print(programName))
		return
	}

	config := loadConfig(*configFile)

	logger, logFile, err := utils.NewLoggerFromConfig(config.Logging)
	if err != nil {
		fmt.Printf("Warning: %v, logging to stdout only\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if *testNotify {
		fmt.Println("Testing notifiers...")
		dispatcher := buildNotifiers(config, logger)
		ctx, cancel := context.WithTimeout(context.Background(), config.DispatchTimeout())
		defer cancel()
		if err := alert.SendTestMessage(ctx, dispatcher); err != nil {
			fmt.Printf("❌ Failed to send test message: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Test message sent successfully!")
		return
	}

	fmt.Println("Network Throughput Monitor")
	fmt.Printf("Sampling interval: %v\n", config.Interval())
	fmt.Printf("Prometheus export port: %s\n", config.Application.MetricsPort)
	for _, class := range sortedClasses(config) {
		p := config.Thresholds[class]
		fmt.Printf("  %-10s in >= %v Mbps, out >= %v Mbps\n", class, p.InboundLimitMbps, p.OutboundLimitMbps)
	}
	fmt.Println("")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// servers tracks the exporter and API goroutines until their shutdown completes.
	var servers sync.WaitGroup

	exporter := alert.NewPrometheusExporter(config.Application.MetricsPort, programName, logger)
	servers.Add(1)
	go func() {
		defer servers.Done()
		if err := exporter.Start(ctx); err != nil {
			logger.Errorf("Prometheus exporter error: %v", err)
		}
	}()

	source, err := buildSource(config)
	if err != nil {
		fmt.Printf("Failed to open counter source: %v\n", err)
		os.Exit(1)
	}

	rec := buildRecorders(config, logger)
	defer func() {
		if err := rec.Close(); err != nil {
			logger.Errorf("Failed to close recorders: %v", err)
		}
	}()

	engine := buildEngine(config, logger)
	dispatcher := buildNotifiers(config, logger)

	monitor := pipeline.NewMonitor(monitorConfig(config), source, engine, rec, dispatcher, logger)
	monitor.SetMetrics(exporter.GetMetrics())

	if config.Application.APIEnabled {
		store := api.NewStorage(config.API.HistorySize, config.API.MaxAlerts, logger)
		monitor.AddObserver(store)
		server := api.NewServer(config.Application.APIPort, api.NewHandlers(store, engine, logger), logger)
		servers.Add(1)
		go func() {
			defer servers.Done()
			if err := server.Start(ctx); err != nil {
				logger.Errorf("API server error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nStopping monitor...")
		monitor.Stop()
		cancel()
	}()

	fmt.Println(" Monitoring started!")
	monitor.Start(ctx)

	cancel()
	servers.Wait()
}

func loadConfig(configFile string) *utils.MonitorConfig {
	config, err := utils.LoadMonitorConfig(configFile)
	if err != nil {
		fmt.Printf("Failed to load YAML config %s: %v\n", configFile, err)
		fmt.Println("Using default configuration...")
		config = utils.GetDefaultMonitorConfig()
	} else {
		fmt.Printf("✅ Loaded configuration from %s\n", configFile)
	}

	if err := config.ApplyEnv(); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}
	return config
}
