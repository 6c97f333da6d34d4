package main

import (
	"context"
	"fmt"
	"kenosha-results/cmd/kenosha-scrape/commands"
	"kenosha-results/lib/serviceutil"
	"kenosha-results/lib/telemetry"
	"os"
	"time"
	_ "time/tzdata"
)

func main() {
	telemetry.InitSlog(false)

	ctx := serviceutil.SignalContext()
	tel, err := telemetry.SetupFromEnv(ctx, "kenosha-scrape")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tel.Shutdown(shutdownCtx)

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
