package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prathmesh008/scrappingsydney/ai"
	"github.com/prathmesh008/scrappingsydney/ingest"
	"github.com/prathmesh008/scrappingsydney/internal/profile"
	"github.com/prathmesh008/scrappingsydney/internal/version"
	"github.com/prathmesh008/scrappingsydney/notifier"
	"github.com/prathmesh008/scrappingsydney/server"
	"github.com/prathmesh008/scrappingsydney/store"
	"github.com/prathmesh008/scrappingsydney/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "eventbot",
	Short: `A Telegram assistant that matches Sydney events to your interests with semantic search and pushes the best new match to you.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory (ignore error if
		// the file doesn't exist).
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile, err := loadProfile()
		if err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to open store", "error", err)
			os.Exit(1)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			storeInstance.Close()
			slog.Error("failed to create server", "error", err)
			os.Exit(1)
		}

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM. SIGTERM is the
		// default signal of `kill` and of most process managers.
		signal.Notify(c, terminationSignals...)

		if err := s.Start(ctx); err != nil {
			cancel()
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}

		printGreetings(instanceProfile)

		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		<-ctx.Done()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch active events from the upstream MongoDB store and index them",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer storeInstance.Close()

		embedder, err := newEmbedder(instanceProfile)
		if err != nil {
			return err
		}

		count, err := ingest.NewIngestor(instanceProfile, storeInstance, embedder).Run(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d events.\n", count)
		return nil
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run a single notification cycle and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		storeInstance, err := openStore(ctx, instanceProfile)
		if err != nil {
			return err
		}
		defer storeInstance.Close()

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			return err
		}
		defer s.Shutdown(ctx)

		outcomes, err := s.Dispatcher().RunOnce(ctx)
		for _, outcome := range outcomes {
			switch outcome.Status {
			case notifier.StatusSent:
				fmt.Printf("user %d: sent %s\n", outcome.UserID, outcome.EventID)
			case notifier.StatusSkipped:
				fmt.Printf("user %d: skipped (%s)\n", outcome.UserID, outcome.Reason)
			case notifier.StatusFailed:
				fmt.Printf("user %d: failed: %v\n", outcome.UserID, outcome.Err)
			}
		}
		return err
	},
}

func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:              viper.GetString("mode"),
		Addr:              viper.GetString("addr"),
		Port:              viper.GetInt("port"),
		Data:              viper.GetString("data"),
		Driver:            viper.GetString("driver"),
		DSN:               viper.GetString("dsn"),
		TelegramToken:     viper.GetString("telegram-token"),
		MongoURI:          viper.GetString("mongo-uri"),
		EmbeddingModel:    viper.GetString("embedding-model"),
		EmbeddingDim:      viper.GetInt("embedding-dim"),
		DistanceMetric:    viper.GetString("distance-metric"),
		DefaultQuery:      viper.GetString("default-query"),
		TopK:              viper.GetInt("top-k"),
		NotifyCandidates:  viper.GetInt("candidates"),
		NotifyInterval:    viper.GetDuration("notify-interval"),
		NotifyConcurrency: viper.GetInt("notify-concurrency"),
		NotifyRate:        viper.GetFloat64("notify-rate"),
		Version:           version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func openStore(ctx context.Context, instanceProfile *profile.Profile) (*store.Store, error) {
	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, err
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, err
	}
	return storeInstance, nil
}

func newEmbedder(instanceProfile *profile.Profile) (ai.EmbeddingService, error) {
	embeddingConfig := ai.NewEmbeddingConfigFromProfile(instanceProfile)
	if err := embeddingConfig.Validate(); err != nil {
		return nil, err
	}
	return ai.NewEmbeddingService(embeddingConfig)
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28091)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the ops HTTP server")
	rootCmd.PersistentFlags().Int("port", 28091, "port of the ops HTTP server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("telegram-token", "", "Telegram bot token")
	rootCmd.PersistentFlags().String("mongo-uri", "", "MongoDB URI of the upstream event store")
	rootCmd.PersistentFlags().String("embedding-model", profile.DefaultEmbeddingModel, "embedding model identifier")
	rootCmd.PersistentFlags().Int("embedding-dim", profile.DefaultEmbeddingDim, "embedding vector dimension")
	rootCmd.PersistentFlags().String("distance-metric", "cosine", "vector distance metric (cosine, l2)")
	rootCmd.PersistentFlags().String("default-query", profile.DefaultQueryText, "query substituted for empty ad-hoc queries")
	rootCmd.PersistentFlags().Int("top-k", 5, "results returned for chat recommendations")
	rootCmd.PersistentFlags().Int("candidates", 5, "ranked candidates fetched per user per notification cycle")
	rootCmd.PersistentFlags().Duration("notify-interval", 6*time.Hour, "time between notification cycles")
	rootCmd.PersistentFlags().Int("notify-concurrency", 4, "parallel user pipelines per notification cycle")
	rootCmd.PersistentFlags().Float64("notify-rate", 25, "delivery sink messages per second")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("eventbot")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("EventBot %s started successfully!\n", instanceProfile.Version)

	if instanceProfile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if instanceProfile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", instanceProfile.DSN)
		}
	}

	fmt.Printf("Database driver: %s\n", instanceProfile.Driver)
	fmt.Printf("Mode: %s\n", instanceProfile.Mode)
	fmt.Printf("Ops endpoint: http://localhost:%d/healthz\n", instanceProfile.Port)
	fmt.Println("\n🤖 Bot is polling...")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
