package feed

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-desk/app/gnews"
)

// DefaultSections are served when no preset directory is configured.
func DefaultSections() map[string]*Section {
	return map[string]*Section{
		"stocks": {Name: "stocks", Title: "Stock Market", Query: "indian stock market nifty sensex", Max: 10},
		"crypto": {Name: "crypto", Title: "Cryptocurrency", Query: "cryptocurrency bitcoin ethereum blockchain", Max: 15},
		"local":  {Name: "local", Title: "Local News", Country: "in", Max: gnews.DefaultMax},
	}
}

type SectionCache struct {
	sectionsDir string
	cache       map[string]*Section
	mu          sync.RWMutex
}

func NewSectionCache(sectionsDir string) *SectionCache {
	return &SectionCache{
		sectionsDir: sectionsDir,
		cache:       DefaultSections(),
	}
}

// Run loads every *.yml file of the sections directory. Files override the
// built-in preset of the same name.
func (sc *SectionCache) Run() error {
	if _, err := os.Stat(sc.sectionsDir); os.IsNotExist(err) {
		slog.Debug("Sections directory not found, using built-in presets", "dir", sc.sectionsDir)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(sc.sectionsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		section, err := sc.LoadSection(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Section loaded", "section", name, "query", section.Query, "category", section.Category, "country", section.Country, "max", section.Max)
	}

	return nil
}

func (sc *SectionCache) LoadSection(name string) (*Section, error) {
	file := filepath.Join(sc.sectionsDir, name+".yml")

	section, err := sc.parseSection(file)
	if err != nil {
		return nil, err
	}
	section.Name = name

	if err := sc.validateSection(section); err != nil {
		return nil, fmt.Errorf("invalid section %s: %w", file, err)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache[name] = section

	return section, nil
}

func (sc *SectionCache) GetSection(name string) (*Section, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	section, ok := sc.cache[name]
	if !ok {
		return nil, fmt.Errorf("section with name '%s' not found", name)
	}
	return section, nil
}

// GetSections returns the presets ordered by name.
func (sc *SectionCache) GetSections() []*Section {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	names := slices.Sorted(maps.Keys(sc.cache))
	sections := make([]*Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, sc.cache[name])
	}
	return sections
}

func (sc *SectionCache) GetSectionCount() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.cache)
}

func (sc *SectionCache) parseSection(file string) (*Section, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var section Section
	if err := yaml.Unmarshal(data, &section); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if section.Max == 0 {
		section.Max = gnews.DefaultMax
	}

	return &section, nil
}

func (sc *SectionCache) validateSection(section *Section) error {
	if section == nil {
		return fmt.Errorf("section is nil")
	}

	if section.Title == "" {
		return fmt.Errorf("section title is required")
	}

	if section.Query == "" && section.Category == "" && section.Country == "" {
		return fmt.Errorf("section needs a query, category or country")
	}

	if section.Max < 1 || section.Max > gnews.MaxLimit {
		return fmt.Errorf("max must be between 1 and %d", gnews.MaxLimit)
	}

	return nil
}
