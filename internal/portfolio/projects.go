// Package portfolio holds the site's static content: copy and projects.
package portfolio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project is one entry of the showcase.
type Project struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Image       string   `yaml:"image" json:"image"`
	Link        string   `yaml:"link,omitempty" json:"link,omitempty"`
	GitHub      string   `yaml:"github,omitempty" json:"github,omitempty"`
	Tags        []string `yaml:"tags" json:"tags"`
	Featured    bool     `yaml:"featured,omitempty" json:"featured,omitempty"`
}

// ImageOrPlaceholder is what templates should put in <img src>.
func (p Project) ImageOrPlaceholder() string {
	if p.Image == "" {
		return "/static/placeholder.svg"
	}
	return p.Image
}

// ShowcaseSize is how many projects the home page shows.
const ShowcaseSize = 3

// LoadProjects reads the project list from a YAML file.
func LoadProjects(path string) ([]Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}
	return ParseProjects(raw)
}

// ParseProjects decodes a `projects:` YAML document.
func ParseProjects(raw []byte) ([]Project, error) {
	var doc struct {
		Projects []Project `yaml:"projects"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse projects: %w", err)
	}
	seen := make(map[string]bool, len(doc.Projects))
	for i, p := range doc.Projects {
		if p.ID == "" || p.Title == "" {
			return nil, fmt.Errorf("parse projects: entry %d needs an id and a title", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("parse projects: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return doc.Projects, nil
}

// Showcase returns the projects shown on the home page, in file order.
func Showcase(all []Project) []Project {
	if len(all) > ShowcaseSize {
		return all[:ShowcaseSize]
	}
	return all
}
