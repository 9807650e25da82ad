package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/betoojeda/tienda-facil/internal/importer"
)

func newImportCommand(opts *RootOptions, load Loader) *cobra.Command {
	var storeFlag string
	cmd := &cobra.Command{
		Use:   "import --store <store-id> <file>",
		Short: "Load a CSV or Excel inventory into a store",
		Long: `Load a CSV (.csv) or Excel (.xlsx, .xls) inventory sheet into a store.
Rows with a known code update the product; new codes create one, subject to
the store's product limit. Problems are reported per row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := uuid.Parse(storeFlag)
			if err != nil {
				return fmt.Errorf("invalid --store %q: %w", storeFlag, err)
			}
			path := args[0]
			if _, err := importer.DetectFormat(path); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			return withBackend(cmd, load, func(b *Backend) error {
				res, err := b.Imports.ImportIntoStore(cmd.Context(), storeID, filepath.Base(path), f)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return writeJSON(out, res)
				}
				fmt.Fprintf(out, "Imported %d products (%d new, %d updated)\n", res.Imported, res.Created, res.Updated)
				for _, e := range res.Errors {
					fmt.Fprintf(out, "  %s\n", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&storeFlag, "store", "", "target store id")
	_ = cmd.MarkFlagRequired("store")
	return cmd
}

func newTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template [path]",
		Short: "Write the inventory import template",
		Long:  "Write the CSV import template to path (default: " + importer.TemplateFilename + "). Use - for stdout.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := importer.Template()
			path := importer.TemplateFilename
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(path, body, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
			return nil
		},
	}
}
