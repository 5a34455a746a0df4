package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artdesk/internal/server"
	"artdesk/internal/storage"
)

func RunServe(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	sc := e.cfg.Server
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		sc.Addr = v
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		sc.StoreBackend = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		sc.DBPath = v
	}

	store, err := storage.Open(sc.StoreBackend, sc.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open %s store at %s: %w", sc.StoreBackend, sc.DBPath, err)
	}
	defer store.Close()
	e.logger.Info("store opened", zap.String("backend", sc.StoreBackend), zap.String("path", sc.DBPath))
	if st, ok := store.(*storage.SQLiteStore); ok {
		logLastWrites(contextOf(cmd), st, e.logger)
	}
	if sc.Token == "" {
		e.logger.Warn("no token configured, gateway routes are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(store, server.Options{
		Prefix: sc.RoutePrefix,
		Token:  sc.Token,
		Logger: e.logger,
	})
	return srv.Run(ctx, sc.Addr)
}

func logLastWrites(ctx context.Context, st *storage.SQLiteStore, logger *zap.Logger) {
	for _, key := range []string{storage.KeyArtwork, storage.KeyRecipes, storage.KeyColors} {
		at, err := st.UpdatedAt(ctx, key)
		if err != nil {
			continue
		}
		logger.Info("stored table", zap.String("key", key), zap.Time("updated_at", at))
	}
}
