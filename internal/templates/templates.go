// Package templates ships the curated worksheet starters and the mode
// projection that tailors them before prefill.
package templates

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"warroom-cli/internal/model"
	"warroom-cli/internal/state"
)

//go:embed assets/*.json
var assetsFS embed.FS

// TemplateKind separates the one blank starter from the guided case
// studies. Standard templates prefill the full worksheet only; case
// studies default to every mode unless the document restricts them.
type TemplateKind string

const (
	KindStandard  TemplateKind = "standard"
	KindCaseStudy TemplateKind = "case-study"
)

// Template is one curated starter document. State stays raw until the
// template is actually used: it runs through the same migrate+normalize
// pipeline as any imported snapshot, so old template documents keep
// working after schema bumps.
type Template struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Kind           TemplateKind    `json:"templateKind"`
	SupportedModes []Mode          `json:"supportedModes"`
	State          json.RawMessage `json:"state"`
}

// Supports reports whether the template may be projected into mode.
func (t *Template) Supports(mode Mode) bool {
	for _, m := range t.SupportedModes {
		if m == mode {
			return true
		}
	}
	return false
}

type manifest struct {
	Templates []string `json:"templates"`
}

var (
	catalogOnce sync.Once
	catalog     []*Template
	catalogByID map[string]*Template
)

func loadCatalog() {
	catalogByID = map[string]*Template{}
	data, err := assetsFS.ReadFile("assets/manifest.json")
	if err != nil {
		return
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return
	}
	for _, name := range man.Templates {
		raw, err := assetsFS.ReadFile("assets/" + name)
		if err != nil {
			continue
		}
		tpl, err := parseTemplate(raw)
		if err != nil {
			continue
		}
		if _, dup := catalogByID[tpl.ID]; dup {
			continue
		}
		catalog = append(catalog, tpl)
		catalogByID[tpl.ID] = tpl
	}
}

// parseTemplate decodes and sanitizes one template document. Unknown
// supported-mode tokens are dropped; an empty or missing list falls back
// to the kind's default set.
func parseTemplate(raw []byte) (*Template, error) {
	var tpl Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, err
	}
	tpl.ID = strings.TrimSpace(tpl.ID)
	if tpl.ID == "" {
		return nil, fmt.Errorf("template id is empty")
	}
	if tpl.Kind != KindStandard && tpl.Kind != KindCaseStudy {
		return nil, fmt.Errorf("template %s: unknown kind %q", tpl.ID, tpl.Kind)
	}
	modes := make([]Mode, 0, len(tpl.SupportedModes))
	for _, m := range tpl.SupportedModes {
		if parsed, ok := ParseMode(string(m)); ok {
			modes = append(modes, parsed)
		}
	}
	if len(modes) == 0 {
		switch tpl.Kind {
		case KindStandard:
			modes = []Mode{ModeFull}
		default:
			modes = append(modes, Modes...)
		}
	}
	tpl.SupportedModes = modes
	return &tpl, nil
}

// Catalog returns the curated templates in manifest order.
func Catalog() []*Template {
	catalogOnce.Do(loadCatalog)
	return catalog
}

// Lookup finds a template by id.
func Lookup(id string) *Template {
	catalogOnce.Do(loadCatalog)
	return catalogByID[strings.TrimSpace(id)]
}

// IDs returns the catalog's template ids, sorted.
func IDs() []string {
	ids := make([]string, 0, len(Catalog()))
	for _, t := range Catalog() {
		ids = append(ids, t.ID)
	}
	sort.Strings(ids)
	return ids
}

// Payload resolves a template+mode pair into the state to prefill: the
// template's document is upgraded through the normal read pipeline, then
// projected for the mode. Unknown template ids, unsupported modes, and
// unusable documents all yield nil.
func Payload(templateID string, mode Mode) *model.State {
	tpl := Lookup(templateID)
	if tpl == nil || !tpl.Supports(mode) {
		return nil
	}
	st := state.DecodeSnapshot(tpl.State)
	if st == nil {
		return nil
	}
	return Project(st, mode)
}
