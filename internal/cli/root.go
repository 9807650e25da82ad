package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/betoojeda/tienda-facil/internal/services"
)

// Backend is what the commands operate on. Close releases it.
type Backend struct {
	Imports services.ImportService
	Admin   services.AdminService
	Close   func()
}

// Loader opens a Backend. Commands that touch the database call it lazily.
type Loader func(ctx context.Context) (*Backend, error)

type RootOptions struct {
	Format string // "text" | "json"
}

var validFormats = []string{"text", "json"}

func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:           "tiendactl",
		Short:         "Administer a Tienda Fácil deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(newImportCommand(opts, load))
	cmd.AddCommand(newTemplateCommand())
	cmd.AddCommand(newStatsCommand(opts, load))
	cmd.AddCommand(newConfigCommand(opts, load))
	cmd.AddCommand(newUsersCommand(load))
	return cmd
}

// withBackend runs fn against a freshly loaded backend.
func withBackend(cmd *cobra.Command, load Loader, fn func(*Backend) error) error {
	b, err := load(cmd.Context())
	if err != nil {
		return err
	}
	if b.Close != nil {
		defer b.Close()
	}
	return fn(b)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
