package errcodes

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed codes.yaml
var catalogYAML []byte

// Definition describes one registered code.
type Definition struct {
	Code        Code     `yaml:"code"        json:"code"`
	Name        string   `yaml:"name"        json:"name"`
	Category    Category `yaml:"category"    json:"category"`
	Description string   `yaml:"description" json:"description"`
}

type catalog struct {
	Codes []Definition `yaml:"codes"`
}

// registry is written once by init and only read afterwards.
var (
	registry map[Code]Definition
	ordered  []Definition
)

func init() {
	defs, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("errcodes: invalid catalog: %v", err))
	}
	registry = make(map[Code]Definition, len(defs))
	for _, d := range defs {
		registry[d.Code] = d
	}
	ordered = defs
}

// parseCatalog decodes and checks a catalog document. Entries must be unique
// and sit inside the numeric range of their declared category.
func parseCatalog(raw []byte) ([]Definition, error) {
	var c catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	if len(c.Codes) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	seen := make(map[Code]struct{}, len(c.Codes))
	names := make(map[string]struct{}, len(c.Codes))
	for _, d := range c.Codes {
		if _, dup := seen[d.Code]; dup {
			return nil, fmt.Errorf("duplicate code %d", d.Code)
		}
		if _, dup := names[d.Name]; dup || d.Name == "" {
			return nil, fmt.Errorf("code %d: missing or duplicate name %q", d.Code, d.Name)
		}
		if got := CategoryOf(d.Code); got != d.Category {
			return nil, fmt.Errorf("code %d declared as %s but its range is %s", d.Code, d.Category, got)
		}
		seen[d.Code] = struct{}{}
		names[d.Name] = struct{}{}
	}
	sort.Slice(c.Codes, func(i, j int) bool { return c.Codes[i].Code < c.Codes[j].Code })
	return c.Codes, nil
}

// IsRegistered reports whether code is part of the published catalog.
func IsRegistered(code Code) bool {
	_, ok := registry[code]
	return ok
}

// Lookup returns the catalog entry for code.
func Lookup(code Code) (Definition, bool) {
	d, ok := registry[code]
	return d, ok
}

// All returns a copy of the catalog sorted by code.
func All() []Definition {
	out := make([]Definition, len(ordered))
	copy(out, ordered)
	return out
}

// ByCategory returns the registered codes of one category, sorted.
func ByCategory(c Category) []Definition {
	var out []Definition
	for _, d := range ordered {
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}
