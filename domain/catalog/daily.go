package catalog

import (
	"bufio"
	"os"
	"strings"
)

// LoadDailyCodes reads the day's ticket code list from path: one code per
// line, blank lines and '#' comments skipped, duplicates collapsed keeping
// the first occurrence. Original order is otherwise preserved.
func LoadDailyCodes(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	var codes []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "\ufeff")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		codes = append(codes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}

	return codes, nil
}
