// Command server exposes the single-snapshot quote operation as JSON:
//
//	GET /api/quote?symbol=sh601006
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"stockquote/internal/config"
	"stockquote/internal/httpx"
	"stockquote/internal/provider/cache"
	"stockquote/internal/provider/eastmoney"
	"stockquote/internal/provider/failover"
	"stockquote/internal/provider/ratelimit"
	"stockquote/internal/provider/sina"
	"stockquote/internal/quote"
	"stockquote/internal/ticker"
)

var log = logrus.New()

type quoteResponse struct {
	Quote         *quote.Quote `json:"quote"`
	Change        string       `json:"change,omitempty"`
	ChangePercent string       `json:"change_percent,omitempty"`
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	p := buildProvider(cfg)
	if p == nil {
		log.Fatal("no providers enabled; check config")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
		writeQuote(r.Context(), w, p, r.URL.Query().Get("symbol"), timeout)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withJSONHeaders(withGzip(recoverPanic(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildProvider assembles the configured providers with rate limiting and
// caching. Returns nil when nothing is enabled.
func buildProvider(cfg config.Config) quote.Provider {
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	var providers []quote.Provider
	if cfg.Sina.Enabled {
		var p quote.Provider = sina.NewClient(
			sina.WithHTTPClient(httpClient),
			sina.WithBaseURL(cfg.Sina.Endpoint),
			sina.WithHeader(http.Header{"Referer": []string{cfg.Sina.Referer}}),
		)
		// Prefer token bucket with burst if RPM is set, otherwise min-interval
		if cfg.Sina.MaxRequestsPerMinute > 0 {
			rate := float64(cfg.Sina.MaxRequestsPerMinute) / 60.0
			burst := cfg.Sina.Burst
			if burst <= 0 {
				burst = 1
			}
			p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
		} else if cfg.Sina.MinRequestIntervalSec > 0 {
			p = &ratelimit.MinInterval{P: p, Interval: time.Duration(cfg.Sina.MinRequestIntervalSec) * time.Second}
		}
		providers = append(providers, p)
	}
	if cfg.Eastmoney.Enabled {
		providers = append(providers, eastmoney.New(eastmoney.Config{Endpoint: cfg.Eastmoney.Endpoint}, httpClient))
	}
	if len(providers) == 0 {
		return nil
	}

	var p quote.Provider = providers[0]
	if len(providers) > 1 {
		p = failover.New(providers...)
	}
	if cfg.Sina.CacheTTLSeconds > 0 {
		p = &cache.Provider{P: p, TTL: time.Duration(cfg.Sina.CacheTTLSeconds) * time.Second, MaxItems: cfg.Sina.CacheMaxItems}
	}
	return p
}

func writeQuote(rctx context.Context, w http.ResponseWriter, p quote.Provider, symbol string, timeout time.Duration) {
	tk, err := ticker.Parse(strings.TrimSpace(symbol))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(rctx, timeout)
	defer cancel()

	q, err := p.Fetch(ctx, tk.Symbol)
	if err != nil {
		log.WithField("symbol", tk.Symbol).Warnf("fetch: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := quoteResponse{Quote: q}
	if change, err := q.Change(); err == nil {
		pct, _ := q.ChangePercent()
		resp.Change = change.StringFixed(2)
		resp.ChangePercent = pct.StringFixed(2)
	}

	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for browser usage; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses the response when the client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		next.ServeHTTP(gzipResponseWriter{ResponseWriter: w, Writer: gz}, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("panic: %v", rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
