package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const starterIndex = `---
title: Welcome
created: %s
---

This site was generated by picopage. Edit index.md to get started, or add a
directory with Markdown files to create a new page.
`

// Init scaffolds a new site in dir: a root config.yaml and an index.md.
// Existing files are only replaced when force is set. The author is
// mandatory, as for any site config.
func Init(dir, title, author, created string, force bool) error {
	author = strings.TrimSpace(author)
	if author == "" {
		return ErrMissingAuthor
	}

	cfgPath := filepath.Join(dir, FileName)
	indexPath := filepath.Join(dir, "index.md")

	if !force {
		for _, p := range []string{cfgPath, indexPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", p)
			}
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create site directory: %w", err)
	}

	if title == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve site directory: %w", err)
		}
		title = filepath.Base(abs)
	}
	starter := File{Title: title, Author: author, Theme: DefaultTheme}
	data, err := yaml.Marshal(&starter)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.WriteFile(indexPath, fmt.Appendf(nil, starterIndex, created), 0o644); err != nil {
		return fmt.Errorf("write index article: %w", err)
	}
	return nil
}
