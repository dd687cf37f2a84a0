// Command sercha-chat indexes chat room timelines and searches them.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// homeEnv overrides the ~/.sercha-chat directory.
const homeEnv = "SERCHA_CHAT_HOME"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app *application
	cli.SetVersion(version)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		a, err := newApplication(ctx, os.Getenv(homeEnv))
		if err != nil {
			return nil, err
		}
		app = a
		return a.services(), nil
	})

	err := cli.Execute(ctx)
	if app != nil {
		if cerr := app.Close(); cerr != nil {
			logger.Warn("closing: %v", cerr)
		}
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}
