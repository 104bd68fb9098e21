package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/agency-portal/internal/notification"
	"github.com/frahmantamala/agency-portal/pkg/logger"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the staff notification digest.`,
}

// Digest worker command
var digestWorkerCmd = &cobra.Command{
	Use:   "digest",
	Short: "Start the staff notification digest worker",
	Long:  `Periodically scans for new leads and unread client messages and pushes a digest to the configured notification channels.`,
	Run: func(cmd *cobra.Command, args []string) {
		startDigestWorker()
	},
}

var (
	digestInterval   time.Duration
	digestMaxWorkers int
)

func startDigestWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	dispatcher := notification.NewDispatcher(notification.Config{
		MaxWorkers: getIntFlag(digestMaxWorkers, config.Notification.MaxWorkers),
		QueueSize:  config.Notification.QueueSize,
	}, buildSenders(config.Notification, appLogger), appLogger)

	appLogger.Info("starting digest worker", "interval", digestInterval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(digestInterval)
		defer ticker.Stop()
		lastRun := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runDigest(db, dispatcher, appLogger, lastRun)
				lastRun = now
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	appLogger.Info("digest worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	appLogger.Info("received signal, shutting down digest worker", "signal", sig)
	cancel()
	<-done
	dispatcher.Shutdown()
	appLogger.Info("digest worker shutdown complete")
}

// runDigest pushes one summary job when anything happened since the last run.
func runDigest(db *sqlx.DB, dispatcher *notification.Dispatcher, appLogger *slog.Logger, since time.Time) {
	var newLeads int
	if err := db.QueryRow("SELECT COUNT(*) FROM leads WHERE created_at > $1", since).Scan(&newLeads); err != nil {
		appLogger.Warn("digest: failed to count new leads", "error", err)
		return
	}

	var unreadMessages int
	if err := db.QueryRow(
		"SELECT COUNT(*) FROM messages m JOIN users u ON u.id = m.sender_id WHERE m.is_read = false AND u.role = 'CLIENT'",
	).Scan(&unreadMessages); err != nil {
		appLogger.Warn("digest: failed to count unread messages", "error", err)
		return
	}

	if newLeads == 0 && unreadMessages == 0 {
		return
	}

	dispatcher.Enqueue(notification.Job{
		Subject: "Agency portal digest",
		Body:    fmt.Sprintf("%d new lead(s) since %s, %d unread client message(s) waiting.", newLeads, since.Format(time.RFC3339), unreadMessages),
	})
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	digestWorkerCmd.Flags().DurationVar(&digestInterval, "interval", 15*time.Minute, "How often to scan for new activity")
	digestWorkerCmd.Flags().IntVar(&digestMaxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")

	workerCmd.AddCommand(digestWorkerCmd)
}
