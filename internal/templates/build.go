package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// buildDoc is the authored YAML form of a template. Authors write YAML;
// the build step compiles it to the JSON documents the catalog embeds.
type buildDoc struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	TemplateKind   string         `yaml:"templateKind"`
	SupportedModes []string       `yaml:"supportedModes"`
	State          map[string]any `yaml:"state"`
}

// BuildResult describes one compiled template.
type BuildResult struct {
	Source string `json:"source"`
	File   string `json:"file"`
	ID     string `json:"id"`
	Modes  []Mode `json:"modes"`
}

// Build compiles every YAML template source under srcDir into outDir,
// plus a manifest.json listing the compiled files in stable order. Each
// source is validated the same way the embedded catalog is parsed, and
// its state must survive the read pipeline, so a template that would be
// rejected at runtime fails the build instead.
func Build(ctx context.Context, srcDir, outDir string) ([]BuildResult, error) {
	sources, err := filepath.Glob(filepath.Join(srcDir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	more, err := filepath.Glob(filepath.Join(srcDir, "*.yml"))
	if err != nil {
		return nil, err
	}
	sources = append(sources, more...)
	sort.Strings(sources)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no template sources (*.yaml) in %s", srcDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	results := make([]BuildResult, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := compileTemplate(src, outDir)
			if err != nil {
				return fmt.Errorf("compile %s: %w", filepath.Base(src), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]string{}
	files := make([]string, 0, len(results))
	for _, r := range results {
		if other, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q in %s and %s", r.ID, other, r.Source)
		}
		seen[r.ID] = r.Source
		files = append(files, r.File)
	}
	data, err := json.MarshalIndent(manifest{Templates: files}, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "manifest.json"), append(data, '\n'), 0o644); err != nil {
		return nil, err
	}
	return results, nil
}

func compileTemplate(src, outDir string) (BuildResult, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return BuildResult{}, err
	}
	var doc buildDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return BuildResult{}, fmt.Errorf("parse: %w", err)
	}
	if strings.TrimSpace(doc.ID) == "" {
		return BuildResult{}, fmt.Errorf("id is empty")
	}
	if doc.State == nil {
		return BuildResult{}, fmt.Errorf("template %s: state is missing", doc.ID)
	}
	// The runtime catalog tolerates unknown mode tokens by dropping them;
	// the build is where an author finds out about the typo instead.
	for _, m := range doc.SupportedModes {
		if _, ok := ParseMode(m); !ok {
			return BuildResult{}, fmt.Errorf("template %s: unknown mode %q", doc.ID, m)
		}
	}

	raw, err := json.Marshal(map[string]any{
		"id":             doc.ID,
		"name":           doc.Name,
		"description":    doc.Description,
		"templateKind":   doc.TemplateKind,
		"supportedModes": doc.SupportedModes,
		"state":          doc.State,
	})
	if err != nil {
		return BuildResult{}, err
	}
	tpl, err := parseTemplate(raw)
	if err != nil {
		return BuildResult{}, err
	}

	out, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return BuildResult{}, err
	}
	file := tpl.ID + ".json"
	if err := os.WriteFile(filepath.Join(outDir, file), append(out, '\n'), 0o644); err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Source: src, File: file, ID: tpl.ID, Modes: tpl.SupportedModes}, nil
}
