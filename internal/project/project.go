// Package project persists projects, application config and the offcut
// inventory.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/woodcut/internal/model"
	"github.com/piwi3910/woodcut/internal/units"
)

// Extension is the file extension for saved projects.
const Extension = ".woodcut"

// SaveProject writes the project as indented JSON, creating parent directories.
func SaveProject(path string, p model.Project) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProject reads a project file. Missing fields fall back to the
// defaults of NewProject.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}

	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("parse project %s: %w", path, err)
	}
	if p.Parts == nil {
		p.Parts = []model.Part{}
	}
	if _, err := units.Parse(p.Units); err != nil {
		return model.Project{}, fmt.Errorf("project %s: %w", path, err)
	}
	return p, nil
}
