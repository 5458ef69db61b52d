// Package main provides a performance benchmarking tool for the tierank CLI.
// It generates synthetic catalogs of increasing size, ranks each one several times
// with and without a rank store, treating the first successful stored run as cold and
// averaging the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - tierank binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated catalogs and SQLite files
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/supplelab/tierank/schema"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Catalog     string
	Products    int
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoStoreRuns int
	StoreRuns   int
	Sizes       map[string]int
	Order       []string
	GroupKeys   []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoStoreRuns: 3,
		StoreRuns:   4,
		Sizes: map[string]int{
			"small":  100,
			"medium": 5000,
			"large":  50000,
		},
		Order:     []string{"small", "medium", "large"},
		GroupKeys: []string{"magnesium", "zinc", "vitamin-d3", "omega-3", "creatine", "melatonin", "iron", "b12"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the tierank binary and work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("tierank"); err != nil {
		return fmt.Errorf("tierank binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work dir %s: %w", config.WorkDir, err)
	}
	return nil
}

// generateCatalog writes a synthetic JSON catalog of n products and returns its path.
// Roughly one product in twenty has no ingredients and stays ungrouped.
func generateCatalog(config BenchmarkConfig, name string, n int) (string, error) {
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	evidence := []schema.EvidenceLevel{
		schema.EvidenceHigh, schema.EvidenceModerate, schema.EvidenceLow,
		schema.EvidenceVeryLow, schema.EvidenceInsufficient,
	}

	products := make([]schema.Product, n)
	for i := range products {
		p := schema.Product{
			ID:                   fmt.Sprintf("%s-%06d", name, i),
			Name:                 fmt.Sprintf("Product %d", i),
			Price:                5 + rng.Float64()*60,
			ServingsPerContainer: 30 + rng.IntN(180),
			ServingsPerDay:       1 + rng.IntN(3),
			Evidence:             string(evidence[rng.IntN(len(evidence))]),
		}
		if rng.IntN(20) != 0 {
			p.Ingredients = []schema.Ingredient{{
				GroupKey: config.GroupKeys[rng.IntN(len(config.GroupKeys))],
				AmountMg: 10 + rng.Float64()*500,
				Primary:  true,
			}}
		}
		for range rng.IntN(3) {
			p.SideEffects = append(p.SideEffects, "nausea")
		}
		products[i] = p
	}

	data, err := json.Marshal(map[string]any{"products": products})
	if err != nil {
		return "", err
	}
	path := filepath.Join(config.WorkDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// runBenchmarks executes all benchmark tests across configured catalog sizes
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d catalogs, %v timeout, %d workers, no-store: %d runs, store: %d runs\n",
		len(config.Order), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, name := range config.Order {
		n := config.Sizes[name]
		path, err := generateCatalog(config, name, n)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		results = append(results, runBenchmarkSuite(config, name, n, path))
	}

	return results
}

// runBenchmarkSuite runs both no-store and store benchmarks for one catalog
func runBenchmarkSuite(config BenchmarkConfig, name string, n int, catalogPath string) BenchmarkResult {
	fmt.Printf("Ranking %s catalog (%d products)\n", name, n)

	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, name, catalogPath, backend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Catalog:     name,
		Products:    n,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark ranks a catalog multiple times with the given backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, name, catalogPath, backend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"rank", catalogPath,
		"--workers", fmt.Sprint(config.Workers),
		"--snapshot-backend", backend,
		"--rank-backend", backend,
	}
	if backend == string(schema.SQLiteBackend) {
		args = append(args,
			"--snapshot-db-connect", filepath.Join(config.WorkDir, name+"-snapshots.db"),
			"--rank-db-connect", filepath.Join(config.WorkDir, name+"-ranks.db"),
		)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("tierank", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Batch completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("tierank_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"catalog", "products", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		row := []string{result.Catalog, fmt.Sprint(result.Products), result.NoStoreTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%6d): No-store: %s, Cold: %s, Warm: %s\n",
			result.Catalog, result.Products, result.NoStoreTime, result.ColdTime, result.WarmTime)
	}
}
