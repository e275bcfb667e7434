package access

import (
	"github.com/plantops/plantops-backend/pkg/enums"
)

// Viewer is the authenticated caller of a request.
type Viewer struct {
	UserID   int64
	Role     enums.Role
	Sections []enums.Section
}

func (v Viewer) IsAdmin() bool {
	return v.Role == enums.RoleAdmin
}

// CanSee reports whether the viewer has read access to a section.
func (v Viewer) CanSee(section enums.Section) bool {
	for _, s := range v.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// CanWrite reports whether the viewer may create or change inventory in a
// section. Admins can write everywhere, managers only in their own sections.
func (v Viewer) CanWrite(section enums.Section) bool {
	if v.IsAdmin() {
		return true
	}
	return v.Role.IsManager() && v.CanSee(section)
}

// SectionFilter narrows the viewer's sections to the requested ones. A nil
// request returns every viewer section.
func (v Viewer) SectionFilter(requested []enums.Section) []enums.Section {
	if len(requested) == 0 {
		out := make([]enums.Section, len(v.Sections))
		copy(out, v.Sections)
		return out
	}
	out := make([]enums.Section, 0, len(requested))
	for _, s := range requested {
		if s.IsValid() && v.CanSee(s) {
			out = append(out, s)
		}
	}
	return out
}
