// Fires concurrent reconcile requests at a running server and reports
// status codes and latency.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"
)

func main() {
	base := flag.String("url", "http://localhost:8765", "server base URL")
	plan := flag.Uint("plan", 1, "plan ID")
	role := flag.Uint("role", 1, "role ID")
	concurrency := flag.Int("n", 50, "number of concurrent requests")
	flag.Parse()

	url := fmt.Sprintf("%s/api/plans/%d/roles/%d/reconcile", *base, *plan, *role)
	key := os.Getenv("VANGUARD_API_KEY")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		latencies []time.Duration
		codes     = map[int]int{}
	)

	client := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			req, _ := http.NewRequest("GET", url, nil)
			req.Header.Set("X-Vanguard-Key", key)

			t0 := time.Now()
			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("[Req %d] Err: %v\n", id, err)
				return
			}
			resp.Body.Close()

			mu.Lock()
			latencies = append(latencies, time.Since(t0))
			codes[resp.StatusCode]++
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	fmt.Printf("\nCompleted %d requests in %v\n", *concurrency, time.Since(start))
	for code, n := range codes {
		fmt.Printf("  HTTP %d: %d\n", code, n)
	}
	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		fmt.Printf("  p50 %v  p95 %v  max %v\n",
			latencies[len(latencies)/2], latencies[len(latencies)*95/100], latencies[len(latencies)-1])
	}
}
