package text

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// loadLabels reads the classifier's native label names, one per line, in
// output index order. Blank lines and lines starting with # are skipped.
func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	defer f.Close()

	var labels []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("labels: read: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels: no labels in %s", path)
	}
	return labels, nil
}
