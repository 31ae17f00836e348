package driver

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// loadManifest reads "<root>/<reponame>.manifest", one target per line,
// blank lines skipped. A missing manifest is not an error: it just means no
// target list was configured (equivalent to load_manifest returning NULL).
func loadManifest(root, name string) ([]string, error) {
	path := filepath.Join(root, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			targets = append(targets, line)
		}
	}
	return targets, scanner.Err()
}
