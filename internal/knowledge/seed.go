package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the starter knowledge base shipped with the binary.
func Defaults() []Item {
	items, err := Decode(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded defaults: %v", err))
	}
	return items
}

// LoadFile reads a YAML list of items from path.
func LoadFile(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge seed: %w", err)
	}
	items, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Decode parses and validates a YAML list of items.
func Decode(data []byte) ([]Item, error) {
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode knowledge yaml: %w", err)
	}
	for i := range items {
		if err := Validate(&items[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// Encode renders items as YAML, the format LoadFile reads.
func Encode(items []Item) ([]byte, error) {
	return yaml.Marshal(items)
}
