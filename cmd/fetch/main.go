// Command fetch prints the real-time snapshot for one A-share ticker.
//
//	fetch [flags] <ticker>
//
// The ticker is market-prefixed: sh601006, sz000001.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"stockquote/internal/config"
	"stockquote/internal/httpx"
	"stockquote/internal/provider/eastmoney"
	"stockquote/internal/provider/failover"
	"stockquote/internal/provider/sina"
	"stockquote/internal/quote"
	"stockquote/internal/render"
	"stockquote/internal/ticker"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	var brief bool
	var raw bool
	var timeout int
	var configPath string

	flag.BoolVar(&brief, "brief", false, "one-line output: name, price, change percent")
	flag.BoolVar(&raw, "raw", false, "dump the decoded provider payload and exit")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <ticker>\n\nexample: %s sh601006\n\nflags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	tk, err := ticker.Parse(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	sinaClient := sina.NewClient(
		sina.WithHTTPClient(httpClient),
		sina.WithBaseURL(cfg.Sina.Endpoint),
		sina.WithHeader(http.Header{"Referer": []string{cfg.Sina.Referer}}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
	defer cancel()

	if raw {
		body, err := sinaClient.Raw(ctx, tk.Symbol)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(body)
		return
	}

	var providers []quote.Provider
	if cfg.Sina.Enabled {
		providers = append(providers, sinaClient)
	}
	if cfg.Eastmoney.Enabled {
		providers = append(providers, eastmoney.New(eastmoney.Config{Endpoint: cfg.Eastmoney.Endpoint}, httpClient))
	}
	if len(providers) == 0 {
		log.Fatal("no providers enabled; check config")
	}

	var p quote.Provider = providers[0]
	if len(providers) > 1 {
		p = failover.New(providers...)
	}

	if err := report(ctx, p, tk.Symbol, brief, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

// report fetches one snapshot and writes the formatted output.
func report(ctx context.Context, p quote.Provider, symbol string, brief bool, w io.Writer) error {
	q, err := p.Fetch(ctx, symbol)
	if err != nil {
		return err
	}
	if brief {
		render.Brief(w, q)
		return nil
	}
	render.Detail(w, q)
	return nil
}
