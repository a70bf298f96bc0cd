package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one rendered node in the output manifest.
type ManifestEntry struct {
	Node   string `json:"node"`
	Points int    `json:"points"`
	Image  string `json:"image"`
}

// WriteManifest writes manifest.json next to the rendered previews.
// Failed nodes are omitted.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Node:   r.Node,
			Points: r.Points,
			Image:  r.Image,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
