// Stock Insight API server. Wires market data providers, the SQLite
// store, the alert scheduler and the optional Gemini advisor behind
// the REST and WebSocket surface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"github.com/ducminhle1904/stock-insight/internal/advisor"
	"github.com/ducminhle1904/stock-insight/internal/alerts"
	"github.com/ducminhle1904/stock-insight/internal/config"
	"github.com/ducminhle1904/stock-insight/internal/logger"
	"github.com/ducminhle1904/stock-insight/internal/monitoring"
	"github.com/ducminhle1904/stock-insight/internal/notifications"
	"github.com/ducminhle1904/stock-insight/internal/portfolio"
	"github.com/ducminhle1904/stock-insight/internal/screener"
	"github.com/ducminhle1904/stock-insight/internal/server"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/data"
)

const shutdownTimeout = 15 * time.Second

func main() {
	var (
		configFile = flag.String("config", "config.yaml", "Path to configuration file")
		envFile    = flag.String("env", ".env", "Path to environment file")
	)
	flag.Parse()

	// Load environment variables
	if err := loadEnvFile(*envFile); err != nil {
		log.Printf("Warning: Could not load .env file (%v), checking environment variables...", err)
	}

	fmt.Println("🚀 Stock Insight Server Starting...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	appLogger := logger.Init("insight-server", logger.ParseLevel(cfg.Log.Level))

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("❌ Failed to open database %s: %v", cfg.Database.Path, err)
	}
	defer st.Close()

	provider := buildProvider(cfg)

	health := monitoring.NewHealthChecker()
	health.SetStoreStatus(st.Ping(context.Background()) == nil)
	health.SetProviderStatus(true)

	var adv *advisor.Advisor
	if os.Getenv("GEMINI_API_KEY") != "" {
		adv, err = advisor.New(context.Background(), cfg.Advisor.Model)
		if err != nil {
			log.Fatalf("❌ Failed to initialize advisor: %v", err)
		}
		adv.WithTimeout(cfg.Advisor.Timeout)
	} else {
		appLogger.Info("advisor disabled", "reason", "GEMINI_API_KEY not set")
	}

	var notifier notifications.Notifier
	if cfg.TelegramConfigured() {
		notifier = notifications.NewTelegramNotifier(cfg.Alerts.Telegram.BotToken, cfg.Alerts.Telegram.ChatID)
	} else {
		notifier = notifications.NewNoopNotifier(appLogger)
	}

	evaluator := alerts.NewEvaluator(st, provider, notifier, appLogger)
	scheduler := alerts.NewScheduler(evaluator, cfg.Alerts.Schedule, appLogger)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("❌ Failed to start alert scheduler: %v", err)
	}
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Addr:       cfg.Server.Addr,
		CORSOrigin: cfg.Server.CORSOrigin,
	}, server.Deps{
		Store:     st,
		Provider:  provider,
		Screener:  screener.New(provider, 0, appLogger),
		Valuer:    portfolio.NewValuer(st, provider, appLogger),
		Advisor:   adv,
		Scheduler: scheduler,
		Health:    health,
		Logger:    appLogger,
	})

	printStartupBanner(cfg, adv != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("❌ Server error: %v", err)
	case <-sigChan:
		fmt.Println("\n🛑 Shutdown signal received...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("shutdown error", "error", err)
	}

	fmt.Println("✅ Server stopped successfully")
}

// buildProvider assembles the market data chain: Alpha Vantage for
// equities when a key is present (CSV fixtures otherwise), Bybit for
// crypto, a router to split symbols between them, and a cache in front.
func buildProvider(cfg *config.Config) data.MarketProvider {
	var equity data.MarketProvider
	if cfg.Providers.AlphaVantageKey != "" {
		equity = data.NewAlphaVantageProvider(cfg.Providers.AlphaVantageKey)
	} else {
		equity = data.NewCSVProvider(cfg.Providers.CSVDir)
	}

	crypto := data.NewBybitProvider(data.BybitConfig{
		Testnet:  cfg.Providers.Bybit.Testnet,
		Category: cfg.Providers.Bybit.Category,
	})

	router := data.NewRouter(equity, crypto)
	return data.NewCachedProviderWithTTL(router, cfg.Providers.BarCacheTTL, cfg.Providers.QuoteCacheTTL)
}

func printStartupBanner(cfg *config.Config, advisorOn bool) {
	equitySource := "CSV files"
	if cfg.Providers.AlphaVantageKey != "" {
		equitySource = "Alpha Vantage"
	}
	advisorStatus := "disabled"
	if advisorOn {
		advisorStatus = cfg.Advisor.Model
		if advisorStatus == "" {
			advisorStatus = advisor.DefaultModel
		}
	}
	alertDelivery := "log only"
	if cfg.TelegramConfigured() {
		alertDelivery = "Telegram"
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🚀 STOCK INSIGHT SERVER")
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"🌐 Listen Address", cfg.Server.Addr},
		{"🗄️ Database", cfg.Database.Path},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📈 Equity Data", equitySource},
		{"🪙 Crypto Data", fmt.Sprintf("Bybit (%s)", cfg.Providers.Bybit.Category)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🤖 Advisor", advisorStatus},
		{"🔔 Alert Schedule", cfg.Alerts.Schedule},
		{"📨 Alert Delivery", alertDelivery},
	})
	t.Render()
}

func loadEnvFile(envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		return godotenv.Load(envFile)
	}
	return fmt.Errorf("env file %s not found", envFile)
}
