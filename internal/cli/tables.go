package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"artdesk/internal/catalog"
	"artdesk/internal/session"
)

func readCSVArg(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// tableSession runs edit against a session restored from the gateway and
// writes the result before returning. Nothing is saved when edit fails.
func tableSession(cmd *cobra.Command, edit func(*session.Session) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	ctx := contextOf(cmd)
	if err := e.preflight(ctx); err != nil {
		return err
	}
	sess := e.session()
	defer sess.Close()
	if err := sess.Restore(ctx); err != nil {
		return err
	}
	if err := edit(sess); err != nil {
		return err
	}
	return sess.Flush(ctx)
}

// matchID finds the single id equal to, or starting with, prefix.
func matchID(ids []string, prefix string) (int, error) {
	found := -1
	for i, id := range ids {
		if id == prefix {
			return i, nil
		}
		if strings.HasPrefix(id, prefix) {
			if found >= 0 {
				return -1, fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("id %q: %w", prefix, session.ErrEntryNotFound)
	}
	return found, nil
}

func findRecipe(recipes []catalog.RecipeEntry, prefix string) (catalog.RecipeEntry, error) {
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	i, err := matchID(ids, prefix)
	if err != nil {
		return catalog.RecipeEntry{}, fmt.Errorf("recipe %w", err)
	}
	return recipes[i], nil
}

func findColor(colors []catalog.ColorEntry, prefix string) (catalog.ColorEntry, error) {
	ids := make([]string, len(colors))
	for i, c := range colors {
		ids[i] = c.ID
	}
	i, err := matchID(ids, prefix)
	if err != nil {
		return catalog.ColorEntry{}, fmt.Errorf("color %w", err)
	}
	return colors[i], nil
}

// applyRecipeFlags copies the recipe flags the user set onto r.
func applyRecipeFlags(cmd *cobra.Command, r *catalog.RecipeEntry) error {
	flags := cmd.Flags()
	if flags.Changed("silo") {
		r.BlankSilo, _ = flags.GetString("silo")
	}
	if flags.Changed("material") {
		r.MaterialType, _ = flags.GetString("material")
	}
	slots, _ := flags.GetStringArray("slot")
	for _, s := range slots {
		letter, v, ok := strings.Cut(s, "=")
		if !ok || !r.SetSlot(strings.ToUpper(strings.TrimSpace(letter)), strings.TrimSpace(v)) {
			return fmt.Errorf("invalid --slot %q: want A..E=value", s)
		}
	}
	return nil
}

func RunRecipesList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	recipes, err := e.client().LoadRecipes(contextOf(cmd))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBlank Silo\tMaterial Type\tA\tB\tC\tD\tE")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.BlankSilo, r.MaterialType, r.A, r.B, r.C, r.D, r.E)
	}
	return tw.Flush()
}

func RunRecipesAdd(cmd *cobra.Command, args []string) error {
	var draft catalog.RecipeEntry
	if err := applyRecipeFlags(cmd, &draft); err != nil {
		return err
	}
	var added catalog.RecipeEntry
	err := tableSession(cmd, func(sess *session.Session) error {
		draft.ID = sess.AddRecipe().ID
		added = draft
		return sess.UpdateRecipe(added)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added recipe %s\n", added.ID)
	return nil
}

func RunRecipesSet(cmd *cobra.Command, args []string) error {
	var updated catalog.RecipeEntry
	err := tableSession(cmd, func(sess *session.Session) error {
		r, err := findRecipe(sess.Recipes(), args[0])
		if err != nil {
			return err
		}
		if err := applyRecipeFlags(cmd, &r); err != nil {
			return err
		}
		updated = r
		return sess.UpdateRecipe(r)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated recipe %s\n", updated.ID)
	return nil
}

func RunRecipesDelete(cmd *cobra.Command, args []string) error {
	var id string
	err := tableSession(cmd, func(sess *session.Session) error {
		r, err := findRecipe(sess.Recipes(), args[0])
		if err != nil {
			return err
		}
		id = r.ID
		return sess.DeleteRecipe(id)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted recipe %s\n", id)
	return nil
}

func RunRecipesImport(cmd *cobra.Command, args []string) error {
	text, err := readCSVArg(args[0])
	if err != nil {
		return err
	}
	recipes := catalog.ParseRecipes(text)
	if err := tableSession(cmd, func(sess *session.Session) error {
		sess.ReplaceRecipes(recipes)
		return nil
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d recipes successfully\n", len(recipes))
	return nil
}

func RunRecipesExport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	recipes, err := e.client().LoadRecipes(contextOf(cmd))
	if err != nil {
		return err
	}
	return writeOutput(cmd, catalog.SerializeRecipes(recipes))
}

func RunColorsList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	colors, err := e.client().LoadColors(contextOf(cmd))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tColor Name\tHex Value")
	for _, c := range colors {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ID, c.Name, c.Hex)
	}
	return tw.Flush()
}

func RunColorsAdd(cmd *cobra.Command, args []string) error {
	hex, _ := cmd.Flags().GetString("hex")
	var added catalog.ColorEntry
	err := tableSession(cmd, func(sess *session.Session) error {
		added = sess.AddColor(args[0], hex)
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added color %s\n", added.ID)
	return nil
}

func RunColorsSet(cmd *cobra.Command, args []string) error {
	var updated catalog.ColorEntry
	err := tableSession(cmd, func(sess *session.Session) error {
		c, err := findColor(sess.Colors(), args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("name") {
			c.Name, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("hex") {
			c.Hex, _ = cmd.Flags().GetString("hex")
		}
		updated = c
		return sess.UpdateColor(c)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated color %s\n", updated.ID)
	return nil
}

func RunColorsDelete(cmd *cobra.Command, args []string) error {
	var id string
	err := tableSession(cmd, func(sess *session.Session) error {
		c, err := findColor(sess.Colors(), args[0])
		if err != nil {
			return err
		}
		id = c.ID
		return sess.DeleteColor(id)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted color %s\n", id)
	return nil
}

func RunColorsImport(cmd *cobra.Command, args []string) error {
	text, err := readCSVArg(args[0])
	if err != nil {
		return err
	}
	colors := catalog.ParseColors(text)
	if err := tableSession(cmd, func(sess *session.Session) error {
		sess.ReplaceColors(colors)
		return nil
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d colors successfully\n", len(colors))
	return nil
}

func RunColorsExport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	colors, err := e.client().LoadColors(contextOf(cmd))
	if err != nil {
		return err
	}
	return writeOutput(cmd, catalog.SerializeColors(colors))
}
