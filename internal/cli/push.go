package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func RunPush(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	ctx := contextOf(cmd)
	text, ok, err := readSource(ctx, cmd, e)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("push needs --file or --sheet")
	}

	if err := e.preflight(ctx); err != nil {
		return err
	}
	sess := e.session()
	defer sess.Close()
	// Stored rows supply the keys new rows are tagged against.
	if err := sess.Restore(ctx); err != nil {
		return err
	}
	res := sess.LoadCSV(text)
	if err := sess.Flush(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d rows (%d new)\n", res.Rows, res.New)
	return nil
}
