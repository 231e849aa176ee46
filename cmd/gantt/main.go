package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GabrielDCoutoo/SOTR-rerun/internal/app"
	"github.com/GabrielDCoutoo/SOTR-rerun/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	cfg, err := config.Parse("gantt", args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	if _, err := app.Run(context.Background(), cfg, stdout); err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return 1
	}

	return 0
}
