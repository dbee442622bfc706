// Command loadtest hammers a running `ircstat serve` with read traffic.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

const (
	numWorkers   = 50
	testDuration = 10 * time.Second
)

var baseURL = "http://127.0.0.1:8090"

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// target is what the server reported it holds.
type target struct {
	plugins  []string
	channels []string
}

func main() {
	if u := os.Getenv("IRCSTAT_URL"); u != "" {
		baseURL = strings.TrimRight(u, "/")
	}

	fmt.Println("=== ircstat Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	fmt.Print("Waiting for server... ")
	var tg *target
	for i := 0; i < 30; i++ {
		var err error
		if tg, err = discover(); err == nil {
			break
		}
		if i == 29 {
			fmt.Printf("FAILED: %v\n", err)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Printf("OK (%d plugins, %d channels)\n", len(tg.plugins), len(tg.channels))
	if len(tg.plugins) == 0 {
		fmt.Println("Nothing to query, run the server with input logs or --from")
		return
	}

	fmt.Println("\n--- Phase 1: Listings (/plugins, /channels, /diagnostics) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch rng.Intn(3) {
		case 0:
			return doGet("/plugins", nil)
		case 1:
			return doGet("/channels", nil)
		default:
			return doGet("/diagnostics", nil)
		}
	})

	fmt.Println("\n--- Phase 2: Report reads (stats, graphs, top) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		plugin := tg.plugins[rng.Intn(len(tg.plugins))]
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doGet("/stats", url.Values{"plugin": {plugin}})
		case r < 0.60 && len(tg.channels) > 0:
			ch := tg.channels[rng.Intn(len(tg.channels))]
			return doGet("/stats/channel", url.Values{"plugin": {plugin}, "ch": {ch}})
		case r < 0.80:
			return doGet("/graphs", url.Values{"plugin": {plugin}})
		default:
			return doGet("/top", url.Values{"plugin": {plugin}, "key": {"message"}, "limit": {"5"}})
		}
	})
}

func discover() (*target, error) {
	var plugins []struct {
		Name string `json:"name"`
	}
	if err := getJSON("/plugins", &plugins); err != nil {
		return nil, err
	}
	tg := &target{}
	for _, p := range plugins {
		tg.plugins = append(tg.plugins, p.Name)
	}
	if err := getJSON("/channels", &tg.channels); err != nil {
		return nil, err
	}
	return tg, nil
}

func getJSON(path string, v any) error {
	resp, err := httpClient.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	totalOps := atomic.NewInt64(0)
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
					totalOps.Inc()
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, totalOps.Load(), duration)
}

func printResults(allResults map[string]*stats, totalOps int64, duration time.Duration) {
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	if totalOps == 0 {
		fmt.Println("  No requests completed")
		return
	}
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

// doGet counts anything but 200 as an error; a 404 here means the server
// lost a plugin or channel it listed a moment ago.
func doGet(path string, query url.Values) result {
	endpoint := "GET " + path
	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	start := time.Now()
	resp, err := httpClient.Get(target)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
