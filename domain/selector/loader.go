package selector

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlSelectorFile is the YAML structure for selector definitions.
type yamlSelectorFile struct {
	Targets map[string][]string `yaml:"targets"`
}

// LoadFromFS loads a selector set from a file inside an embedded or real
// filesystem.
func LoadFromFS(fsys fs.FS, path string) (Set, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read selector file %s: %w", path, err)
	}
	return parse(data, path)
}

// LoadFile loads a selector set from an on-disk YAML file. Used for
// operator overrides of the embedded defaults.
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read selector file %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) (Set, error) {
	var file yamlSelectorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse selector file %s: %w", path, err)
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("selector file %s defines no targets", path)
	}
	for name, chain := range file.Targets {
		if len(chain) == 0 {
			return nil, fmt.Errorf("selector file %s: target %q has no candidates", path, name)
		}
	}
	return Set(file.Targets), nil
}
