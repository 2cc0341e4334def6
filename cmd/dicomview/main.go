// Command dicomview is an interactive terminal viewer for the metadata API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/term"

	"dicomviewer/internal/viewer"
	"dicomviewer/internal/viewer/client"
)

func main() {
	apiURL := flag.String("api", envOr("DICOMVIEW_API", "http://localhost:8080"), "metadata API base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	if err := run(*apiURL, *timeout, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "dicomview:", err)
		os.Exit(1)
	}
}

func run(apiURL string, timeout time.Duration, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api, err := client.New(apiURL,
		client.WithUserAgent("dicomview/1.0"),
		client.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return err
	}

	defaults, err := api.CommonFields(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dicomview: could not load default fields: %v\n", err)
		defaults = nil
	}

	table := viewer.New(defaults)
	prompt := ""
	if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
		if width, _, err := term.GetSize(fd); err == nil {
			table.SetMaxValueWidth(width / 2)
		}
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = "dicomview> "
	}

	session := viewer.NewSession(api, table, os.Stdout)
	if len(args) > 0 {
		if err := session.Execute(ctx, "load "+args[0]); err != nil {
			return err
		}
	}
	return session.Run(ctx, os.Stdin, prompt)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
