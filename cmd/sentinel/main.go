// Package main is the entry point for the Trader Sentinel client.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/trader-sentinel/business/account"
	accountDI "github.com/fd1az/trader-sentinel/business/account/di"
	"github.com/fd1az/trader-sentinel/business/market"
	marketApp "github.com/fd1az/trader-sentinel/business/market/app"
	marketDI "github.com/fd1az/trader-sentinel/business/market/di"
	"github.com/fd1az/trader-sentinel/business/payment"
	paymentApp "github.com/fd1az/trader-sentinel/business/payment/app"
	paymentDI "github.com/fd1az/trader-sentinel/business/payment/di"
	paymentDomain "github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/bootstrap"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/health"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/monolith"
	"github.com/fd1az/trader-sentinel/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// actionFlags are the inputs of a one-shot funding action.
type actionFlags struct {
	kind    string
	tier    string
	token   string
	amount  string
	poolID  string
	tokenB  string
	amountB string
}

func (f actionFlags) request() paymentDomain.PaymentRequest {
	tier, _ := paymentDomain.ParseTier(f.tier)
	return paymentDomain.PaymentRequest{
		PackageID: tier,
		Token:     f.token,
		Amount:    f.amount,
		PoolID:    f.poolID,
		TokenB:    f.tokenB,
		AmountB:   f.amountB,
	}
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")

	var action actionFlags
	flag.StringVar(&action.kind, "action", "", "Run one funding action and exit: pay-subscription, add-liquidity, stake, claim-rewards")
	flag.StringVar(&action.tier, "tier", "", "Subscription package for pay-subscription")
	flag.StringVar(&action.token, "token", "USDT", "Payment token, or token A for add-liquidity")
	flag.StringVar(&action.amount, "amount", "", "Amount for stake, or token A amount for add-liquidity")
	flag.StringVar(&action.poolID, "pool", "", "Pool id for add-liquidity")
	flag.StringVar(&action.tokenB, "token-b", "", "Token B for add-liquidity")
	flag.StringVar(&action.amountB, "amount-b", "", "Token B amount for add-liquidity")
	flag.Parse()

	if *showVersion {
		fmt.Printf("trader-sentinel %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging and one-shot actions
	tuiMode := !*cliMode && action.kind == ""

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, tuiMode, action); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool, action actionFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules pick the TUI reporter and observer
	cfg.Market.TUIMode = tuiMode

	// Only log to stderr outside the TUI
	var log *logger.Logger
	if tuiMode {
		log = bootstrap.NewLogger(io.Discard, cfg)
	} else {
		log = bootstrap.NewLogger(os.Stderr, cfg)
		log.Info(ctx, "starting trader sentinel",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	stopTelemetry := bootstrap.StartTelemetry(ctx, cfg.Telemetry, log)
	defer stopTelemetry()

	// Modules in dependency order
	mono, err := monolith.New(cfg, log,
		&account.Module{}, // Must be first - state store shared by the others
		&payment.Module{}, // Depends on account for wallet and subscription state
		&market.Module{},  // Depends on account for signal history
	)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	if action.kind != "" {
		kind := paymentDomain.ActionKind(action.kind)
		if !kind.Valid() {
			return fmt.Errorf("unknown action %q", action.kind)
		}
		if err := mono.Start(ctx); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		return runAction(ctx, paymentDI.GetPaymentService(mono.Services()), kind, action.request())
	}

	healthServer := health.NewServer(cfg.Health.Port, version, log)
	healthServer.RegisterCheck("account", accountDI.GetHealthCheck(mono.Services()))
	healthServer.RegisterCheck("market", marketDI.GetHealthCheck(mono.Services()))
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", cfg.Health.Port, "checks", healthServer.Names())
	}
	defer healthServer.Stop(context.WithoutCancel(ctx))

	if tuiMode {
		// TUI mode: Start modules in background so TUI shows immediately
		startFunc := func() error {
			if err := mono.Start(ctx); err != nil {
				return fmt.Errorf("failed to start modules: %w", err)
			}
			return marketDI.GetWatcher(mono.Services()).Start(ctx)
		}
		stopFunc := func() {
			_ = marketDI.GetWatcher(mono.Services()).Stop()
		}
		return runTUI(ctx, startFunc, stopFunc)
	}

	// CLI mode: Start modules synchronously
	if err := mono.Start(ctx); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	return runCLI(ctx, marketDI.GetWatcher(mono.Services()), log)
}

// runAction executes a single funding action and prints its result as JSON.
func runAction(ctx context.Context, svc *paymentApp.Service, kind paymentDomain.ActionKind, req paymentDomain.PaymentRequest) error {
	result := svc.Execute(ctx, kind, req)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("%s failed: %s", kind, result.Error)
	}
	return nil
}

func runCLI(ctx context.Context, watcher *marketApp.Watcher, log *logger.Logger) error {
	log.Info(ctx, "all modules started, watching markets")

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	// Wait for shutdown
	<-ctx.Done()

	log.Info(ctx, "shutting down")

	if err := watcher.Stop(); err != nil {
		log.Error(ctx, "error stopping watcher", "error", err)
	}

	return nil
}

func runTUI(ctx context.Context, startFunc func() error, stopFunc func()) error {
	// Closed over by the welcome screen once it is dismissed
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program immediately (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		<-ctx.Done()

		stopFunc()
		errCh <- nil
	}()

	// Run TUI (blocking)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
