// Package access resolves which production sections a caller can see and
// write. The role to section mapping is static configuration injected at
// startup.
package access

import (
	"fmt"
	"sort"

	"github.com/plantops/plantops-backend/pkg/enums"
)

// Policy maps roles to the sections they can access.
type Policy struct {
	sections map[enums.Role][]enums.Section
}

// NewPolicy validates a role to section-number mapping.
func NewPolicy(roleSections map[string][]int) (*Policy, error) {
	p := &Policy{sections: make(map[enums.Role][]enums.Section, len(roleSections))}
	for rawRole, numbers := range roleSections {
		role, err := enums.ParseRole(rawRole)
		if err != nil {
			return nil, err
		}
		sections, err := normalizeSections(numbers)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", role, err)
		}
		p.sections[role] = sections
	}
	// Admins always see every section regardless of configuration.
	p.sections[enums.RoleAdmin] = enums.AllSections()
	return p, nil
}

// SectionsFor returns the sections a role can access. Unknown roles get none.
func (p *Policy) SectionsFor(role enums.Role) []enums.Section {
	if p == nil {
		return nil
	}
	sections := p.sections[role]
	out := make([]enums.Section, len(sections))
	copy(out, sections)
	return out
}

// Viewer builds the request-scoped viewer for an authenticated caller.
func (p *Policy) Viewer(userID int64, role enums.Role) Viewer {
	return Viewer{UserID: userID, Role: role, Sections: p.SectionsFor(role)}
}

func normalizeSections(numbers []int) ([]enums.Section, error) {
	seen := map[enums.Section]struct{}{}
	out := make([]enums.Section, 0, len(numbers))
	for _, n := range numbers {
		section := enums.Section(n)
		if !section.IsValid() {
			return nil, fmt.Errorf("invalid section %d", n)
		}
		if _, ok := seen[section]; ok {
			continue
		}
		seen[section] = struct{}{}
		out = append(out, section)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
