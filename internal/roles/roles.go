// Package roles holds the fixed engineering role tables: per-role defaults,
// the role hierarchy and per-channel access levels. The tables are defined at
// process start and read-only afterwards; accessors return copies.
package roles

import (
	"sort"

	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// Role identifiers. The set is fixed; roles are never created at runtime.
const (
	Mechanical     = "MECHANICAL"
	Electrical     = "ELECTRICAL"
	Software       = "SOFTWARE"
	Systems        = "SYSTEMS"
	ProjectManager = "PROJECT_MANAGER"

	// Default is the implicit role of users with no assignment. It exists
	// only in the hierarchy, not in the role table.
	Default = "DEFAULT"
)

// Wildcard in an access set grants every channel regardless of hierarchy.
const Wildcard = "*"

// Role describes a team function: display name, the channels tracked by
// default, default interest topics, and channels always accessible.
type Role struct {
	Name             string
	DefaultChannels  []string
	DefaultInterests []string
	CanAccess        []string
}

var engineeringRoles = map[string]Role{
	Mechanical: {
		Name:             "Mechanical Engineering",
		DefaultChannels:  []string{"mechanical", "cad", "manufacturing"},
		DefaultInterests: []string{"cad", "manufacturing", "mechanical-design", "thermal"},
		CanAccess:        []string{"mechanical", "cad", "manufacturing", "general"},
	},
	Electrical: {
		Name:             "Electrical Engineering",
		DefaultChannels:  []string{"electrical", "battery", "power-electronics"},
		DefaultInterests: []string{"battery", "power-electronics", "electrical-design", "thermal"},
		CanAccess:        []string{"electrical", "battery", "power-electronics", "general"},
	},
	Software: {
		Name:             "Software Engineering",
		DefaultChannels:  []string{"software", "firmware", "controls"},
		DefaultInterests: []string{"firmware", "controls", "software-architecture", "testing"},
		CanAccess:        []string{"software", "firmware", "controls", "general"},
	},
	Systems: {
		Name:             "Systems Engineering",
		DefaultChannels:  []string{"systems", "integration", "testing"},
		DefaultInterests: []string{"integration", "testing", "requirements", "validation"},
		CanAccess:        []string{"systems", "integration", "testing", "general"},
	},
	ProjectManager: {
		Name:             "Project Management",
		DefaultChannels:  []string{"project-management", "planning", "general"},
		DefaultInterests: []string{"planning", "milestones", "risks", "resources"},
		CanAccess:        []string{Wildcard},
	},
}

// Higher rank means broader implicit access.
var roleHierarchy = map[string]int{
	ProjectManager: 4,
	Systems:        3,
	Software:       2,
	Electrical:     2,
	Mechanical:     2,
	Default:        1,
}

// Channels absent from this table are open to everyone (level 1).
var channelAccessLevels = map[string]int{
	"general":    1,
	"mechanical": 2,
	"electrical": 2,
	"software":   2,
	"systems":    3,
	"management": 4,
}

const openAccessLevel = 1

// Known reports whether role is part of the fixed enumeration.
func Known(role string) bool {
	_, ok := engineeringRoles[role]
	return ok
}

// Describe returns the role definition, or an UnknownRole error if the
// identifier is not in the fixed enumeration.
func Describe(role string) (Role, error) {
	r, ok := engineeringRoles[role]
	if !ok {
		return Role{}, apperrors.UnknownRole(role)
	}
	return Role{
		Name:             r.Name,
		DefaultChannels:  copyStrings(r.DefaultChannels),
		DefaultInterests: copyStrings(r.DefaultInterests),
		CanAccess:        copyStrings(r.CanAccess),
	}, nil
}

// HierarchyRank returns the role's rank, falling back to the base rank for
// empty or unrecognized input. Never fails.
func HierarchyRank(role string) int {
	if rank, ok := roleHierarchy[role]; ok {
		return rank
	}
	return roleHierarchy[Default]
}

// ChannelAccessLevel returns the rank required to access channel. Unknown
// channels are open to everyone. Never fails.
func ChannelAccessLevel(channel string) int {
	if level, ok := channelAccessLevels[channel]; ok {
		return level
	}
	return openAccessLevel
}

// DefaultChannels returns the default tracked channels for role, empty for
// unknown roles.
func DefaultChannels(role string) []string {
	return copyStrings(engineeringRoles[role].DefaultChannels)
}

// DefaultInterests returns the default interest topics for role, empty for
// unknown roles.
func DefaultInterests(role string) []string {
	return copyStrings(engineeringRoles[role].DefaultInterests)
}

// Available returns the sorted list of role identifiers.
func Available() []string {
	ids := make([]string, 0, len(engineeringRoles))
	for id := range engineeringRoles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
