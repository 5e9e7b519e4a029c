package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSectionCacheDefaults(t *testing.T) {
	sectionCache := NewSectionCache(filepath.Join(t.TempDir(), "missing"))
	if err := sectionCache.Run(); err != nil {
		t.Fatal(err)
	}

	if sectionCache.GetSectionCount() != 3 {
		t.Errorf("Expected 3 built-in sections, got %d", sectionCache.GetSectionCount())
	}

	stocks, err := sectionCache.GetSection("stocks")
	if err != nil {
		t.Fatal(err)
	}
	if stocks.Query != "indian stock market nifty sensex" || stocks.Max != 10 {
		t.Errorf("Unexpected stocks preset: %+v", stocks)
	}

	crypto, _ := sectionCache.GetSection("crypto")
	if crypto.Max != 15 {
		t.Errorf("Expected crypto max 15, got %d", crypto.Max)
	}

	local, _ := sectionCache.GetSection("local")
	q := local.GNewsQuery()
	if q.Country != "in" || q.SearchTerm != "" {
		t.Errorf("Unexpected local query: %+v", q)
	}

	sections := sectionCache.GetSections()
	if sections[0].Name != "crypto" || sections[2].Name != "stocks" {
		t.Errorf("Expected sections sorted by name, got %s..%s", sections[0].Name, sections[2].Name)
	}
}

func TestSectionCacheLoadValidSection(t *testing.T) {
	tempDir := t.TempDir()

	content := `
title: "Science Desk"
category: "science"
country: "us"
`
	if err := os.WriteFile(filepath.Join(tempDir, "science.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	override := `
title: "Crypto"
query: "bitcoin"
max: 20
`
	if err := os.WriteFile(filepath.Join(tempDir, "crypto.yml"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	sectionCache := NewSectionCache(tempDir)
	if err := sectionCache.Run(); err != nil {
		t.Fatal(err)
	}

	if sectionCache.GetSectionCount() != 4 {
		t.Errorf("Expected 4 sections, got %d", sectionCache.GetSectionCount())
	}

	science, err := sectionCache.GetSection("science")
	if err != nil {
		t.Fatal(err)
	}
	if science.Name != "science" {
		t.Errorf("Expected name 'science', got '%s'", science.Name)
	}
	if science.Max != 10 {
		t.Errorf("Expected default max 10, got %d", science.Max)
	}
	if science.GNewsQuery().Category != "science" {
		t.Errorf("Expected category 'science', got '%s'", science.GNewsQuery().Category)
	}

	crypto, _ := sectionCache.GetSection("crypto")
	if crypto.Query != "bitcoin" || crypto.Max != 20 {
		t.Errorf("Expected file to override built-in preset, got %+v", crypto)
	}
}

func TestSectionCacheInvalidSections(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"missing title", `query: "x"`, "title is required"},
		{"no filter", `title: "Empty"`, "needs a query"},
		{"max too large", "title: \"Big\"\nquery: \"x\"\nmax: 150", "max must be between"},
		{"bad yaml", "title: [unclosed", "failed to parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			if err := os.WriteFile(filepath.Join(tempDir, "broken.yml"), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			err := NewSectionCache(tempDir).Run()
			if err == nil {
				t.Fatal("Expected error for invalid section")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing %q, got %v", tt.errPart, err)
			}
		})
	}
}

func TestSectionCacheUnknownSection(t *testing.T) {
	if _, err := NewSectionCache("").GetSection("sports"); err == nil {
		t.Error("Expected error for unknown section")
	}
}
