// taxonomy.go maps upstream category codes and free-text locality names
// onto the service's closed enumerations.
//
// Category codes are a small fixed vocabulary, so a plain lookup table with
// a WELFARE fallback suffices. Localities are messier: the portal emits
// "서울", "서울시" and "서울특별시" interchangeably, so resolution goes through
// a canonical alias table (regions.yaml, embedded at build time). Matching
// is an exact lookup over the normalized string and its tokens; the alias
// file's order is the documented precedence for any collisions.
package ingest

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"youthpolicy/internal/types"
)

//go:embed regions.yaml
var regionsYAML []byte

// categoryByCode maps upstream policy-realm codes to service categories.
var categoryByCode = map[string]types.Category{
	"023010": types.CategoryJob,
	"023020": types.CategoryHousing,
	"023030": types.CategoryEducation,
	"023040": types.CategoryWelfare,
	"023050": types.CategoryStartup,
	"023060": types.CategoryLoan,
}

// CategoryFromCode resolves an upstream category code. Unrecognized codes
// fall back to WELFARE rather than failing the record.
func CategoryFromCode(code string) types.Category {
	if c, ok := categoryByCode[strings.TrimSpace(code)]; ok {
		return c
	}
	return types.CategoryWelfare
}

// regionAliasFile is the on-disk shape of regions.yaml.
type regionAliasFile struct {
	Regions []struct {
		Region  string   `yaml:"region"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"regions"`
}

// RegionResolver resolves free-text locality names to regions via an
// exact, pre-tokenized alias lookup.
type RegionResolver struct {
	byAlias map[string]types.Region
}

// NewRegionResolver builds a resolver from the embedded alias table.
func NewRegionResolver() (*RegionResolver, error) {
	return newRegionResolverFrom(regionsYAML)
}

func newRegionResolverFrom(raw []byte) (*RegionResolver, error) {
	var file regionAliasFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing region alias table: %w", err)
	}

	byAlias := make(map[string]types.Region)
	for _, entry := range file.Regions {
		region := types.Region(entry.Region)
		for _, alias := range entry.Aliases {
			key := normalizeLocality(alias)
			if key == "" {
				continue
			}
			// First writer wins: file order is the precedence list.
			if _, exists := byAlias[key]; exists {
				continue
			}
			byAlias[key] = region
		}
	}

	return &RegionResolver{byAlias: byAlias}, nil
}

// Resolve maps a free-text locality name to a Region. The full normalized
// string is tried first, then each whitespace-separated token in order.
// Unresolvable input falls back to the ALL sentinel.
func (r *RegionResolver) Resolve(locality string) types.Region {
	normalized := normalizeLocality(locality)
	if normalized == "" {
		return types.RegionAll
	}

	if region, ok := r.byAlias[normalized]; ok {
		return region
	}

	for _, token := range strings.Fields(strings.TrimSpace(locality)) {
		if region, ok := r.byAlias[normalizeLocality(token)]; ok {
			return region
		}
	}

	return types.RegionAll
}

// normalizeLocality strips whitespace and trailing punctuation so that
// "서울 특별시" and "서울특별시" resolve identically.
func normalizeLocality(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), "")
	s = strings.Trim(s, ".,()[]")
	return s
}
