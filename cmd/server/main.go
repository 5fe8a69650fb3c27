package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/wtnb75/wasmstatic"
)

func listeningMessage(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return fmt.Sprintf("Example app listening on port %d!", tcp.Port)
	}
	return fmt.Sprintf("Example app listening on %s!", addr)
}

func run(ctx context.Context, cfg *wasmstatic.Config, stdout io.Writer) error {
	srv, err := wasmstatic.New(cfg)
	if err != nil {
		return err
	}
	return srv.Start(ctx, func(addr net.Addr) {
		fmt.Fprintln(stdout, listeningMessage(addr))
	})
}

func realMain() error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, wasmstatic.CreateConfig(), os.Stdout)
}

func main() {
	if err := realMain(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
