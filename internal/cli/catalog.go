package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/itemfilter"
	"github.com/kailas-cloud/itemfilter/internal/config"
	"github.com/kailas-cloud/itemfilter/internal/domain/view"
)

type catalogItem struct {
	ID      string            `json:"id" yaml:"id"`
	Classes []string          `json:"classes" yaml:"classes"`
	Fields  map[string]string `json:"fields" yaml:"fields"`
}

type catalog struct {
	Items []catalogItem `json:"items" yaml:"items"`
}

// LoadCatalog reads items from a YAML or JSON file (by extension).
func LoadCatalog(path string) ([]itemfilter.Item, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var c catalog
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = sonic.Unmarshal(data, &c)
	} else {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	items := make([]itemfilter.Item, 0, len(c.Items))
	for i, ci := range c.Items {
		it, err := itemfilter.NewItem(ci.ID, ci.Classes, ci.Fields)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// LoadViews reads only the views section of a service config file, so files
// written for other database drivers stay usable offline.
func LoadViews(path string) (map[string]*view.View, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.BuildViews()
}
