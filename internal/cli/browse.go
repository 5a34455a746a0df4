package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"artdesk/internal/ui"
)

func RunBrowse(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the browser; keep logs out of it.
	if e.cfg.Log.OutputPath == "" {
		e.logger = zap.NewNop()
	}
	defer e.logger.Sync()

	ctx := contextOf(cmd)
	sess := e.session()
	defer sess.Close()

	restoreErr := e.preflight(ctx)
	if restoreErr == nil {
		restoreErr = sess.Restore(ctx)
	}
	text, ok, err := readSource(ctx, cmd, e)
	if err != nil {
		return err
	}
	if ok {
		res := sess.LoadCSV(text)
		fmt.Fprintf(cmd.ErrOrStderr(), "loaded %d rows (%d new)\n", res.Rows, res.New)
	} else if restoreErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not load saved data: %v\n", restoreErr)
	}

	return ui.Run(sess, e.cfg)
}
