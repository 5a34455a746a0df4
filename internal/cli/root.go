package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"artdesk/internal/catalog"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "artdesk",
		Short: "Browse, query and persist the artwork catalog",
		Long: `artdesk loads the artwork catalog from a CSV file or a published
Google Sheet, lets you search, filter, sort and edit it in the terminal,
and keeps the rows, recipes and colors in a small persistence gateway.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default $ARTDESK_CONFIG or the user config dir)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the persistence gateway",
		Args:  cobra.NoArgs,
		RunE:  RunServe,
	}
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().String("backend", "", "Store backend: sqlite|pebble (overrides server.store_backend)")
	serveCmd.Flags().String("db", "", "Store path (overrides server.db_path)")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the catalog in the terminal table browser",
		Args:  cobra.NoArgs,
		RunE:  RunBrowse,
	}
	addSourceFlags(browseCmd)

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Search, filter and sort the catalog and print it as CSV",
		Args:  cobra.NoArgs,
		RunE:  RunQuery,
	}
	addSourceFlags(queryCmd)
	queryCmd.Flags().String("search", "", "Case-insensitive text matched against every column")
	queryCmd.Flags().String("ask", "", "Plain-language question turned into a search term")
	queryCmd.Flags().StringArray("filter", nil, "Column filter as column=value (repeatable)")
	queryCmd.Flags().String("sort", "", "Sort column, optionally suffixed with :asc or :desc")
	queryCmd.Flags().Bool("all", false, "Export every row, ignoring search and filters (sort still applies)")
	queryCmd.Flags().StringP("out", "o", "", "Write CSV to this file instead of stdout")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Print the newly-added or missing-data report",
		Args:  cobra.NoArgs,
		RunE:  RunReport,
	}
	addSourceFlags(reportCmd)
	reportCmd.Flags().String("kind", reportNewlyAdded, "Report kind: newly-added|missing-data")
	reportCmd.Flags().Bool("json", false, "Print machine-readable report")

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Load a CSV or sheet, tag new rows, and save it to the gateway",
		Args:  cobra.NoArgs,
		RunE:  RunPush,
	}
	addSourceFlags(pushCmd)

	recipesCmd := &cobra.Command{
		Use:   "recipes",
		Short: "Manage the recipe table",
	}
	recipesImportCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the stored recipe table with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRecipesImport,
	}
	recipesExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored recipe table as CSV",
		Args:  cobra.NoArgs,
		RunE:  RunRecipesExport,
	}
	recipesExportCmd.Flags().StringP("out", "o", "", "Write CSV to this file instead of stdout")
	recipesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored recipes with their ids",
		Args:  cobra.NoArgs,
		RunE:  RunRecipesList,
	}
	recipesAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe entry",
		Args:  cobra.NoArgs,
		RunE:  RunRecipesAdd,
	}
	addRecipeFlags(recipesAddCmd)
	recipesSetCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change fields of a recipe entry (id or unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRecipesSet,
	}
	addRecipeFlags(recipesSetCmd)
	recipesDeleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe entry (id or unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE:  RunRecipesDelete,
	}
	recipesCmd.AddCommand(recipesImportCmd, recipesExportCmd, recipesListCmd, recipesAddCmd, recipesSetCmd, recipesDeleteCmd)

	colorsCmd := &cobra.Command{
		Use:   "colors",
		Short: "Manage the color table",
	}
	colorsImportCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Replace the stored color table with a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunColorsImport,
	}
	colorsExportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored color table as CSV",
		Args:  cobra.NoArgs,
		RunE:  RunColorsExport,
	}
	colorsExportCmd.Flags().StringP("out", "o", "", "Write CSV to this file instead of stdout")
	colorsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored colors with their ids",
		Args:  cobra.NoArgs,
		RunE:  RunColorsList,
	}
	colorsAddCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a color",
		Args:  cobra.ExactArgs(1),
		RunE:  RunColorsAdd,
	}
	colorsAddCmd.Flags().String("hex", "", "Hex value (default "+catalog.DefaultHex+")")
	colorsSetCmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Rename a color or change its hex value",
		Args:  cobra.ExactArgs(1),
		RunE:  RunColorsSet,
	}
	colorsSetCmd.Flags().String("name", "", "New color name")
	colorsSetCmd.Flags().String("hex", "", "New hex value")
	colorsDeleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a color (id or unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE:  RunColorsDelete,
	}
	colorsCmd.AddCommand(colorsImportCmd, colorsExportCmd, colorsListCmd, colorsAddCmd, colorsSetCmd, colorsDeleteCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "artdesk %s\n", version)
		},
	}

	rootCmd.AddCommand(
		serveCmd,
		browseCmd,
		queryCmd,
		reportCmd,
		pushCmd,
		recipesCmd,
		colorsCmd,
		versionCmd,
	)

	return rootCmd
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Load rows from a local CSV file")
	cmd.Flags().String("sheet", "", "Load rows from a Google Sheets URL shared for viewing")
}

func addRecipeFlags(cmd *cobra.Command) {
	cmd.Flags().String("silo", "", "Blank silo the recipe applies to")
	cmd.Flags().String("material", "", "Material type")
	cmd.Flags().StringArray("slot", nil, "Slot value as letter=value, e.g. A=Red (repeatable)")
}
