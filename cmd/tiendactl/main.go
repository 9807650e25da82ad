package main

import (
	"context"
	"fmt"
	"os"

	"github.com/betoojeda/tienda-facil/internal/app"
	"github.com/betoojeda/tienda-facil/internal/cli"
)

func load(ctx context.Context) (*cli.Backend, error) {
	a, err := app.New(ctx)
	if err != nil {
		return nil, err
	}
	return &cli.Backend{
		Imports: a.Services.Import,
		Admin:   a.Services.Admin,
		Close:   a.Close,
	}, nil
}

func main() {
	if err := cli.NewRootCommand(load).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "tiendactl: %v\n", err)
		os.Exit(1)
	}
}
