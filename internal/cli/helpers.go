package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artdesk/internal/catalog"
	"artdesk/internal/config"
	"artdesk/internal/gateway"
	"artdesk/internal/logging"
	"artdesk/internal/session"
	"artdesk/internal/sheets"
)

// env bundles what every command needs.
type env struct {
	cfg    config.Config
	logger *zap.Logger
}

func loadEnv(cmd *cobra.Command) (env, error) {
	path := config.ResolveConfigPath()
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		path = f.Value.String()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return env{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return env{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return env{cfg: cfg, logger: logger}, nil
}

func (e env) client() *gateway.Client {
	return gateway.New(e.cfg.Client.BaseURL, e.cfg.Client.Token, e.cfg.ClientTimeout(), nil)
}

// preflight fails fast when the gateway is down or rejects the token.
func (e env) preflight(ctx context.Context) error {
	if err := e.client().Health(ctx); err != nil {
		return fmt.Errorf("gateway %s is not reachable: %w", e.cfg.Client.BaseURL, err)
	}
	return nil
}

func (e env) session() *session.Session {
	return session.New(e.client(), session.Options{
		KeyField:   e.cfg.Catalog.KeyField,
		SiloColumn: e.cfg.Catalog.SiloColumn,
		Debounce:   e.cfg.SaveDebounce(),
		Logger:     e.logger,
	})
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// readSource returns the CSV text named by --file or --sheet. ok is false
// when neither flag is set.
func readSource(ctx context.Context, cmd *cobra.Command, e env) (text string, ok bool, err error) {
	file, _ := cmd.Flags().GetString("file")
	sheet, _ := cmd.Flags().GetString("sheet")
	switch {
	case file != "" && sheet != "":
		return "", false, fmt.Errorf("--file and --sheet are mutually exclusive")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), true, nil
	case sheet != "":
		client := &http.Client{Timeout: e.cfg.ClientTimeout()}
		text, err := sheets.Load(ctx, client, sheet)
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	}
	return "", false, nil
}

// loadTable reads --file/--sheet, or the rows stored in the gateway when
// neither is given.
func loadTable(ctx context.Context, cmd *cobra.Command, e env) (catalog.Table, error) {
	text, ok, err := readSource(ctx, cmd, e)
	if err != nil {
		return catalog.Table{}, err
	}
	if ok {
		return catalog.Parse(text), nil
	}
	rows, err := e.client().LoadData(ctx)
	if err != nil {
		return catalog.Table{}, err
	}
	return catalog.Table{Columns: catalog.ColumnsOf(rows), Rows: rows}, nil
}

// writeOutput writes text to --out, or to the command's stdout.
func writeOutput(cmd *cobra.Command, text string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text+"\n")
		return err
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	return nil
}
