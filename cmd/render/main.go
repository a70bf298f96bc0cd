package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"potree-preview/internal/batch"
	"potree-preview/internal/cloud"
	"potree-preview/internal/config"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	cloudDir := flag.String("cloud", "", "Path to cloud directory (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <cloud>/previews)")
	format := flag.String("format", "", "Preview format: webp or tga (default: webp)")
	node := flag.String("node", "", "Render only the named node")
	testN := flag.Int("test", 0, "Render only first N nodes for testing")
	maxPoints := flag.Int("max-points", 0, "Decode at most N points per node")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		CloudDir:  *cloudDir,
		OutputDir: *outputDir,
		Format:    *format,
		MaxPoints: *maxPoints,
		Workers:   *workers,
	})

	if cfg.CloudDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find a cloud.js directory. Use -cloud flag or config.json.")
		os.Exit(1)
	}

	cl, err := cloud.Load(cfg.CloudDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading cloud: %v\n", err)
		os.Exit(1)
	}

	nodes := cl.Nodes
	if *node != "" {
		n, ok := cl.Node(*node)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: node %q not found\n", *node)
			os.Exit(1)
		}
		nodes = []cloud.Node{n}
	}
	if *testN > 0 && *testN < len(nodes) {
		nodes = nodes[:*testN]
	}

	if len(nodes) == 0 {
		fmt.Println("No nodes to render.")
		os.Exit(0)
	}

	mode := ""
	if *node != "" {
		mode = fmt.Sprintf(" (node %s)", *node)
	} else if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("Point Cloud Preview Renderer%s\n", mode)
	fmt.Printf("Schema: %d attributes, stride %d bytes, %d declared points\n",
		len(cl.Schema.Attributes), cl.Schema.RecordStride(), cl.Schema.PointCount)
	fmt.Printf("Nodes: %d, Workers: %d\n", len(nodes), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Cloud:       cl,
		OutputDir:   cfg.OutputDir,
		PreviewSize: cfg.PreviewSize,
		Supersample: cfg.Supersample,
		Format:      cfg.Format,
		MaxPoints:   cfg.MaxPoints,
		Workers:     cfg.Workers,
	}, nodes)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errors []batch.Result
	totalPoints := 0
	for _, r := range results {
		if r.Success {
			success++
			totalPoints += r.Points
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d nodes, %d points\n", success, len(nodes), totalPoints)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Node, e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
