package main

import (
	"flag"
	"fmt"
	"os"

	"potree-preview/internal/cloud"
	"potree-preview/internal/points"
	"potree-preview/internal/schema"

	"gonum.org/v1/gonum/stat"
)

func main() {
	nodeName := flag.String("node", "", "Also decode the named node and print value summaries")
	maxPoints := flag.Int("max-points", 0, "Decode at most N points of the node")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: inspect [-node NAME] CLOUD_DIR...")
		os.Exit(2)
	}

	exitCode := 0
	for _, dir := range flag.Args() {
		cl, err := cloud.Load(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = 1
			continue
		}
		printSchema(dir, cl)

		if *nodeName != "" {
			n, ok := cl.Node(*nodeName)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: node %q not found in %s\n", *nodeName, dir)
				exitCode = 1
				continue
			}
			if err := printNode(cl, n, *maxPoints); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = 1
			}
		}
	}
	os.Exit(exitCode)
}

func printSchema(dir string, cl *cloud.Cloud) {
	sch := cl.Schema
	fmt.Printf("\n=== %s ===\n", dir)
	fmt.Printf("Declared points:  %d\n", sch.PointCount)
	fmt.Printf("Hierarchy step:   %d\n", sch.HierarchyStepSize)
	fmt.Printf("BBox min:         (%.3f, %.3f, %.3f)\n", sch.BBoxMin[0], sch.BBoxMin[1], sch.BBoxMin[2])
	fmt.Printf("BBox max:         (%.3f, %.3f, %.3f)\n", sch.BBoxMax[0], sch.BBoxMax[1], sch.BBoxMax[2])
	fmt.Printf("Scale:            (%g, %g, %g)\n", sch.Scale[0], sch.Scale[1], sch.Scale[2])
	fmt.Printf("Offset:           (%.3f, %.3f, %.3f)\n", sch.Offset[0], sch.Offset[1], sch.Offset[2])
	fmt.Printf("Record stride:    %d bytes\n", sch.RecordStride())

	fmt.Println("Attributes:")
	off := 0
	for i, a := range sch.Attributes {
		fmt.Printf("  [%d] %-18s type=%-8s size=%-3d elements=%d offset=%d\n",
			i, a.Kind, a.Type, a.Size, a.Elements, off)
		off += a.Size
	}

	stride := int64(sch.RecordStride())
	fmt.Printf("Nodes: %d\n", len(cl.Nodes))
	for _, n := range cl.Nodes {
		fmt.Printf("  %-10s %10d bytes  %9d records\n", n.Name, n.Size, n.Size/stride)
	}
}

func printNode(cl *cloud.Cloud, n cloud.Node, maxPoints int) error {
	data, err := cl.ReadNode(n)
	if err != nil {
		return err
	}
	if maxPoints <= 0 {
		maxPoints = -1
	}
	block, err := points.Decode(data, cl.Schema, maxPoints)
	if err != nil {
		return err
	}

	fmt.Printf("\n--- node %s: %d points decoded ---\n", n.Name, block.Len())
	if block.Len() == 0 {
		return nil
	}

	var xs, ys, zs []float64
	for _, p := range block.Positions {
		xs = append(xs, p[0])
		ys = append(ys, p[1])
		zs = append(zs, p[2])
	}
	printAxis("x", xs)
	printAxis("y", ys)
	printAxis("z", zs)

	if block.Intensities != nil {
		vals := make([]float64, len(block.Intensities))
		for i, v := range block.Intensities {
			vals[i] = float64(v)
		}
		fmt.Printf("  intensity: mean=%.1f stddev=%.1f\n", stat.Mean(vals, nil), stat.StdDev(vals, nil))
	}
	if block.Classifications != nil {
		counts := map[uint8]int{}
		for _, c := range block.Classifications {
			counts[c]++
		}
		fmt.Printf("  classifications: %d distinct\n", len(counts))
	}
	if block.Colors != nil {
		fmt.Printf("  colors: present (%s)\n", colorKinds(cl.Schema))
	}
	return nil
}

func printAxis(name string, vals []float64) {
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	fmt.Printf("  %s: [%.3f .. %.3f] mean=%.3f stddev=%.3f\n",
		name, min, max, stat.Mean(vals, nil), stat.StdDev(vals, nil))
}

func colorKinds(sch *schema.Schema) string {
	if sch.HasKind(schema.KindPackedColor) {
		return "packed rgba"
	}
	return "rgb"
}
