package app

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Asset is one remote resource warmed during startup.
type Asset struct {
	Name string
	URL  string
}

const (
	// assumed size when a HEAD probe reports no Content-Length
	defaultAssetSize = 500 * 1024
	// upper bound per asset; anything larger is counted at the cap
	maxAssetSize = 5 * 1024 * 1024
)

// PreflightProgress reports warm-up progress to the splash screen.
type PreflightProgress struct {
	Done       int
	Total      int
	Bytes      int64
	TotalBytes int64
}

// PreflightResult aggregates the warm-up outcome. Failures are
// non-fatal: the app starts with whatever warmed successfully.
type PreflightResult struct {
	Bytes    int64
	Fetched  int
	Failed   []string
	Duration time.Duration
}

// Preflight probes each asset with HEAD to size the work, then fetches
// them in parallel. Progress is reported after every completed asset.
func Preflight(ctx context.Context, client *http.Client, assets []Asset, onProgress func(PreflightProgress), logger *log.Logger) PreflightResult {
	start := time.Now()
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if len(assets) == 0 {
		return PreflightResult{Duration: time.Since(start)}
	}

	var totalBytes int64
	sizes := make([]int64, len(assets))
	for i, a := range assets {
		sizes[i] = probeSize(ctx, client, a.URL)
		totalBytes += sizes[i]
	}

	var (
		mu       sync.Mutex
		done     int
		fetched  int64
		gotBytes int64
		failed   []string
	)
	report := func() {
		if onProgress == nil {
			return
		}
		onProgress(PreflightProgress{
			Done:       done,
			Total:      len(assets),
			Bytes:      atomic.LoadInt64(&gotBytes),
			TotalBytes: totalBytes,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, a := range assets {
		g.Go(func() error {
			n, err := fetchAsset(gctx, client, a.URL)
			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				logger.Warn("preflight fetch failed", "asset", a.Name, "err", err)
				failed = append(failed, a.Name)
			} else {
				atomic.AddInt64(&fetched, 1)
				atomic.AddInt64(&gotBytes, n)
			}
			report()
			return nil
		})
	}
	_ = g.Wait()

	return PreflightResult{
		Bytes:    atomic.LoadInt64(&gotBytes),
		Fetched:  int(atomic.LoadInt64(&fetched)),
		Failed:   failed,
		Duration: time.Since(start),
	}
}

// probeSize HEADs the asset for its Content-Length, assuming a default
// when the server doesn't say and capping runaway values.
func probeSize(ctx context.Context, client *http.Client, url string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return defaultAssetSize
	}
	resp, err := client.Do(req)
	if err != nil {
		return defaultAssetSize
	}
	defer resp.Body.Close()
	if resp.ContentLength <= 0 {
		return defaultAssetSize
	}
	if resp.ContentLength > maxAssetSize {
		return maxAssetSize
	}
	return resp.ContentLength
}

func fetchAsset(ctx context.Context, client *http.Client, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(io.Discard, io.LimitReader(resp.Body, maxAssetSize))
}

// DefaultAssets lists the resources worth warming before first paint:
// the known manuscript scans.
func DefaultAssets() []Asset {
	out := make([]Asset, 0, len(manuscriptLinks))
	for key, url := range manuscriptLinks {
		out = append(out, Asset{Name: key, URL: url})
	}
	return out
}
