package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cinesearch/cinesearch/internal/observability"
	"github.com/cinesearch/cinesearch/internal/profile"
	"github.com/cinesearch/cinesearch/plugin/ai"
	"github.com/cinesearch/cinesearch/server"
	"github.com/cinesearch/cinesearch/store"
	"github.com/cinesearch/cinesearch/store/db"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "cinesearch",
	Short: "Semantic movie search over plot embeddings",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:    viper.GetString("mode"),
			Addr:    viper.GetString("addr"),
			Port:    viper.GetInt("port"),
			DSN:     viper.GetString("dsn"),
			Driver:  viper.GetString("driver"),
			Version: version,
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			return err
		}
		slog.SetDefault(observability.NewLogger(instanceProfile.Mode))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			return err
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			return err
		}

		embeddingService, err := ai.NewEmbeddingService(ai.NewEmbeddingConfigFromProfile(instanceProfile))
		if err != nil {
			slog.Error("failed to create embedding service", "error", err)
			return err
		}
		// The model and the stored vectors must agree on dimension before the
		// first query, not at the first query.
		dimensions, err := storeInstance.VectorDimensions(ctx)
		if err != nil {
			slog.Error("failed to read vector dimensions", "error", err)
			return err
		}
		if dimensions != 0 && dimensions != embeddingService.Dimensions() {
			slog.Error("embedding dimension mismatch",
				"store", dimensions,
				"model", embeddingService.Dimensions())
			return errors.New("configured embedding dimensions do not match the store's vector column")
		}
		if instanceProfile.Mode == "prod" {
			if err := embeddingService.Validate(ctx); err != nil {
				slog.Error("embedding model unavailable", "error", err)
				return err
			}
		}
		if ok, err := storeInstance.HasVectorIndex(ctx, instanceProfile.VectorIndexName); err == nil && !ok {
			slog.Warn("vector index not found, searches will fail until it is created",
				"index", instanceProfile.VectorIndexName)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance, embeddingService)
		if err != nil {
			slog.Error("failed to create server", "error", err)
			return err
		}

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-c
			slog.Info("received signal, shutting down", "signal", sig.String())
			s.Shutdown(ctx)
			cancel()
		}()

		if err := s.Start(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			return err
		}
		<-ctx.Done()
		return nil
	},
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8080)
	viper.SetDefault("driver", "postgres")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8080, "port of server")
	rootCmd.PersistentFlags().String("dsn", "", "database connection string")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
	viper.SetEnvPrefix("cinesearch")
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
