package enums

import (
	"fmt"
	"strconv"
	"strings"
)

// Section is one of the three fixed production stages. It partitions data
// visibility for inventory and notifications.
type Section int

const (
	SectionRawMaterial Section = 1
	SectionProcessing  Section = 2
	SectionPackaging   Section = 3
)

var validSections = []Section{
	SectionRawMaterial,
	SectionProcessing,
	SectionPackaging,
}

// AllSections returns a copy of the canonical section list.
func AllSections() []Section {
	out := make([]Section, len(validSections))
	copy(out, validSections)
	return out
}

// IsValid checks whether the section is part of the fixed enumeration.
func (s Section) IsValid() bool {
	for _, candidate := range validSections {
		if candidate == s {
			return true
		}
	}
	return false
}

// Label returns the human readable stage name.
func (s Section) Label() string {
	switch s {
	case SectionRawMaterial:
		return "Raw Material"
	case SectionProcessing:
		return "Processing"
	case SectionPackaging:
		return "Packaging"
	default:
		return "Unknown"
	}
}

// ParseSection converts raw strings ("1".."3") into Section.
func ParseSection(value string) (Section, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid section %q", value)
	}
	section := Section(n)
	if !section.IsValid() {
		return 0, fmt.Errorf("invalid section %q", value)
	}
	return section, nil
}
