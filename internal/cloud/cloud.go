// Package cloud models an on-disk point cloud directory: the cloud.js
// descriptor plus the node .bin files stored beneath data/. Hierarchy
// order is not interpreted here; nodes are exposed as a flat index.
package cloud

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"potree-preview/internal/jsondoc"
	"potree-preview/internal/schema"
)

// descriptorNames lists accepted descriptor file spellings, in priority
// order.
var descriptorNames = []string{"cloud.js", "cloud.json"}

// Node is one binary point block within the cloud.
type Node struct {
	Name string // file stem, e.g. "r", "r0", "r063"
	Path string
	Size int64
}

// Cloud is a loaded cloud directory with its resolved schema.
type Cloud struct {
	Dir    string
	Schema *schema.Schema
	Nodes  []Node
}

// Load reads the descriptor in dir, resolves the schema and indexes the
// node files.
func Load(dir string) (*Cloud, error) {
	doc, err := readDescriptor(dir)
	if err != nil {
		return nil, err
	}
	sch, err := schema.Resolve(doc)
	if err != nil {
		return nil, fmt.Errorf("cloud: %s: %w", dir, err)
	}
	nodes, err := indexNodes(dir)
	if err != nil {
		return nil, err
	}
	return &Cloud{Dir: dir, Schema: sch, Nodes: nodes}, nil
}

// Node looks up an indexed node by name.
func (c *Cloud) Node(name string) (Node, bool) {
	for _, n := range c.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// ReadNode reads a node's raw record bytes.
func (c *Cloud) ReadNode(n Node) ([]byte, error) {
	data, err := os.ReadFile(n.Path)
	if err != nil {
		return nil, fmt.Errorf("cloud: read node %s: %w", n.Name, err)
	}
	return data, nil
}

func readDescriptor(dir string) (jsondoc.Doc, error) {
	for _, name := range descriptorNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		doc, err := jsondoc.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("cloud: %s: %w", path, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("cloud: no descriptor (cloud.js) in %s", dir)
}

// indexNodes walks data/ for .bin files. Node files nest in subdirectories
// per the hierarchy step size; the index flattens them by stem. Shorter
// names sort first so the root node leads the listing.
func indexNodes(dir string) ([]Node, error) {
	dataDir := filepath.Join(dir, "data")
	if _, err := os.Stat(dataDir); err != nil {
		// Some converters drop node files next to the descriptor.
		dataDir = dir
	}

	var nodes []Node
	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".bin") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		nodes = append(nodes, Node{Name: stem, Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cloud: scan %s: %w", dataDir, err)
	}

	sort.Slice(nodes, func(i, j int) bool {
		if len(nodes[i].Name) != len(nodes[j].Name) {
			return len(nodes[i].Name) < len(nodes[j].Name)
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes, nil
}
