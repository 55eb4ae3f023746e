// Command bench builds and starts the server against a throwaway
// database, then hammers the tracking endpoint and reports latency
// percentiles. Requests carry no proxy headers, so geolocation
// short-circuits to the Local sentinel and no outbound calls happen.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/linkpulse/linkpulse/internal/db"
	"github.com/linkpulse/linkpulse/internal/models"
)

const linkCount = 200

func main() {
	concurrency := flag.Int("c", 50, "number of concurrent workers")
	duration := flag.Duration("d", 10*time.Second, "benchmark duration")
	flag.Parse()

	fmt.Println("Linkpulse Tracking Benchmark")
	fmt.Println("============================")

	// 1. Build server binary
	fmt.Printf("Building server...     ")
	tmpDir, err := os.MkdirTemp("", "linkpulse-bench-*")
	if err != nil {
		fatal("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	binPath := filepath.Join(tmpDir, "linkpulse-server")
	build := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fatal("build server: %v", err)
	}
	fmt.Println("done")

	// 2. Seed database
	fmt.Printf("Seeding database...    ")
	dbPath := filepath.Join(tmpDir, "linkpulse.db")
	database, err := db.Open(dbPath)
	if err != nil {
		fatal("open db: %v", err)
	}

	codes := make([]string, linkCount)
	for i := 0; i < linkCount; i++ {
		code := fmt.Sprintf("bench%03d", i+1)
		codes[i] = code
		link := &models.Link{
			ID:          uuid.NewString(),
			Name:        fmt.Sprintf("Bench %d", i+1),
			OriginalURL: fmt.Sprintf("https://example.com/%d", i+1),
			ShortCode:   code,
		}
		if err := models.CreateLink(database, link); err != nil {
			database.Close()
			fatal("seed link %d: %v", i+1, err)
		}
	}
	database.Close()
	fmt.Printf("done (%d links)\n", linkCount)

	// 3. Start server
	fmt.Printf("Starting server...     ")
	port, err := freePort()
	if err != nil {
		fatal("find free port: %v", err)
	}

	srv := exec.Command(binPath)
	srvLog, err := os.Create(filepath.Join(tmpDir, "server.log"))
	if err != nil {
		fatal("create server log: %v", err)
	}
	defer srvLog.Close()
	srv.Stdout = srvLog
	srv.Stderr = srvLog
	srv.Env = append(os.Environ(),
		fmt.Sprintf("LINKPULSE_PORT=%d", port),
		fmt.Sprintf("LINKPULSE_DB_PATH=%s", dbPath),
		fmt.Sprintf("LINKPULSE_BASE_URL=http://127.0.0.1:%d", port),
		"LINKPULSE_CACHE_SIZE=10000",
	)
	if err := srv.Start(); err != nil {
		fatal("start server: %v", err)
	}
	defer func() {
		srv.Process.Signal(syscall.SIGINT)
		srv.Wait()
	}()

	// 4. Wait for server ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitReady(baseURL+"/api/links", 5*time.Second); err != nil {
		fatal("server not ready: %v", err)
	}
	fmt.Printf("ready (port %d)\n", port)

	// 5. Run benchmark
	fmt.Printf("Benchmarking...        %s, %d workers\n", *duration, *concurrency)

	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: *concurrency,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	rng := rand.New(rand.NewSource(42))
	seeds := make([]int64, *concurrency)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	var (
		mu        sync.Mutex
		latencies []time.Duration
		errors    int64
		reqCount  atomic.Int64
	)

	benchStart := time.Now()
	deadline := benchStart.Add(*duration)
	var wg sync.WaitGroup

	for i := 0; i < *concurrency; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			localRng := rand.New(rand.NewSource(seeds[i]))
			var localLats []time.Duration
			var localErrs int64

			for time.Now().Before(deadline) {
				code := codes[localRng.Intn(linkCount)]
				reqURL := baseURL + "/track/" + code

				start := time.Now()
				resp, err := client.Get(reqURL)
				elapsed := time.Since(start)

				reqCount.Add(1)

				if err != nil {
					localErrs++
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()

				if resp.StatusCode != http.StatusFound {
					localErrs++
					continue
				}

				localLats = append(localLats, elapsed)
			}

			mu.Lock()
			latencies = append(latencies, localLats...)
			errors += localErrs
			mu.Unlock()
		}()
	}

	wg.Wait()

	// 6. Report results
	total := int64(len(latencies)) + errors
	rps := float64(total) / duration.Seconds()

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("")
	fmt.Println("Results")
	fmt.Println("-------")
	fmt.Printf("Requests:    %d\n", total)
	fmt.Printf("Errors:      %d\n", errors)
	fmt.Printf("RPS:         %.1f\n", rps)

	if len(latencies) > 0 {
		fmt.Printf("Latency p50: %s\n", fmtDur(percentile(latencies, 50)))
		fmt.Printf("Latency p95: %s\n", fmtDur(percentile(latencies, 95)))
		fmt.Printf("Latency p99: %s\n", fmtDur(percentile(latencies, 99)))
	}
}

func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port, nil
}

func waitReady(url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 500 * time.Millisecond}
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("timeout after %s", timeout)
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func fmtDur(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", args...)
	os.Exit(1)
}
