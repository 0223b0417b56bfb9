package main

import (
	"context"
	"ctchen222/tictactoe/internal/cli"
	"ctchen222/tictactoe/internal/logger"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
)

func main() {
	delay := flag.Duration("delay", 0, "computer reply delay (default 500ms)")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logger.New(os.Stderr, level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := termenv.NewOutput(os.Stdout)
	app := cli.New(os.Stdin, out, cli.Options{ComputerDelay: *delay})
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tictactoe:", err)
		os.Exit(1)
	}
}
