// Package batch decodes and renders every node of a cloud with a worker
// pool. Each node is independent: one file read, one decode, one image.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"potree-preview/internal/cloud"
	"potree-preview/internal/config"
	"potree-preview/internal/points"
	"potree-preview/internal/preview"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Config holds the shared resources for a batch run.
type Config struct {
	Cloud       *cloud.Cloud
	OutputDir   string
	PreviewSize int
	Supersample int
	Format      string // "webp" or "tga"
	MaxPoints   int    // per node; <= 0 means all
	Workers     int
}

// Result holds the outcome of processing one node.
type Result struct {
	Node    string
	Points  int
	Image   string
	Success bool
	Error   string
}

// Run processes the given nodes using a worker pool and reports progress
// every couple of seconds.
func Run(cfg Config, nodes []cloud.Node) []Result {
	total := len(nodes)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f nodes/sec\n", p, total, rate)
				}
			}
		}
	}()

	nodeChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range nodeChan {
				results[idx] = processNode(cfg, nodes[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range nodes {
		nodeChan <- i
	}
	close(nodeChan)

	wg.Wait()
	close(done)

	return results
}

func processNode(cfg Config, node cloud.Node) Result {
	res := Result{Node: node.Name}

	data, err := cfg.Cloud.ReadNode(node)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	maxPoints := cfg.MaxPoints
	if maxPoints <= 0 {
		maxPoints = -1
	}
	block, err := points.Decode(data, cfg.Cloud.Schema, maxPoints)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Points = block.Len()

	sch := cfg.Cloud.Schema
	img := preview.Render(block, sch.BBoxMin, sch.BBoxMax, cfg.PreviewSize, cfg.Supersample)
	if cfg.Supersample > 1 {
		img = preview.Downsample(img, cfg.PreviewSize)
	}

	ext := config.NormalizeFormat(cfg.Format)
	res.Image = node.Name + "." + ext
	outPath := filepath.Join(cfg.OutputDir, res.Image)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	switch ext {
	case "tga":
		err = tga.Encode(f, img)
	default:
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		res.Error = fmt.Sprintf("%s encode: %v", ext, err)
		return res
	}

	res.Success = true
	return res
}
