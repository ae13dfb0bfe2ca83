// Package platform describes the automation platforms blueprints are written for
// and the rules each of them imposes on a document.
package platform

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Platform identifies a third-party automation platform.
type Platform string

const (
	Make   Platform = "make"
	N8n    Platform = "n8n"
	Zapier Platform = "zapier"
)

// ErrUnknownPlatform is returned when a platform name is not supported.
var ErrUnknownPlatform = errors.New("unknown platform")

// All returns the supported platforms in a stable order.
func All() []Platform {
	return []Platform{Make, N8n, Zapier}
}

// Parse resolves a platform name, ignoring case and surrounding space.
func Parse(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(All(), p) {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}

	return p, nil
}

func (p Platform) String() string {
	return string(p)
}

// SettingDefault is a required settings sub-field and the value used when
// the field is missing.
type SettingDefault struct {
	Key     string
	Default any
}

// Profile is the set of document rules for one platform.
type Profile struct {
	Platform Platform

	// SequentialIDs requires node ids to be the integers 1..N in node order.
	SequentialIDs bool

	// Settings lists required settings sub-fields in report order.
	Settings []SettingDefault

	// NodeSpacing is the horizontal distance between generated positions.
	NodeSpacing float64
	// MinNodeSpacing is the distance under which adjacent nodes are reported
	// as visually cramped.
	MinNodeSpacing float64

	// LinearChainThreshold is the node count above which a graph with no
	// branching is reported.
	LinearChainThreshold int

	// SupportsBranchConditions tells whether connections can carry a condition.
	SupportsBranchConditions bool

	// SupportsConnectionTypes tells whether connections can carry a type
	// other than the main data flow, such as an AI model or tool link.
	SupportsConnectionTypes bool
}

const (
	defaultMinNodeSpacing       = 100
	defaultLinearChainThreshold = 10
)

var profiles = map[Platform]Profile{
	Make: {
		Platform:      Make,
		SequentialIDs: true,
		Settings: []SettingDefault{
			{Key: "roundtrips", Default: 1},
			{Key: "maxErrors", Default: 3},
			{Key: "autoCommit", Default: true},
			{Key: "autoCommitTriggerLast", Default: true},
			{Key: "sequential", Default: false},
			{Key: "confidential", Default: false},
			{Key: "dataloss", Default: false},
			{Key: "dlq", Default: false},
			{Key: "freshVariables", Default: false},
		},
		NodeSpacing:              300,
		MinNodeSpacing:           defaultMinNodeSpacing,
		LinearChainThreshold:     defaultLinearChainThreshold,
		SupportsBranchConditions: true,
	},
	N8n: {
		Platform:      N8n,
		SequentialIDs: false,
		Settings: []SettingDefault{
			{Key: "executionOrder", Default: "v1"},
			{Key: "saveManualExecutions", Default: true},
			{Key: "saveExecutionProgress", Default: false},
			{Key: "callerPolicy", Default: "workflowsFromSameOwner"},
		},
		NodeSpacing:              220,
		MinNodeSpacing:           defaultMinNodeSpacing,
		LinearChainThreshold:     defaultLinearChainThreshold,
		SupportsBranchConditions: false,
		SupportsConnectionTypes:  true,
	},
	Zapier: {
		Platform:      Zapier,
		SequentialIDs: true,
		Settings: []SettingDefault{
			{Key: "timezone", Default: "UTC"},
			{Key: "autoReplay", Default: false},
			{Key: "errorNotifications", Default: true},
		},
		NodeSpacing:              300,
		MinNodeSpacing:           defaultMinNodeSpacing,
		LinearChainThreshold:     defaultLinearChainThreshold,
		SupportsBranchConditions: true,
	},
}

// ProfileFor returns the document rules of p.
func ProfileFor(p Platform) (Profile, error) {
	profile, ok := profiles[p]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, p)
	}

	profile.Settings = slices.Clone(profile.Settings)

	return profile, nil
}

// MustProfile is ProfileFor for platforms known at compile time.
func MustProfile(p Platform) Profile {
	profile, err := ProfileFor(p)
	if err != nil {
		panic(err)
	}

	return profile
}

// DefaultSettings returns a fresh settings object holding every default.
func (p Profile) DefaultSettings() map[string]any {
	settings := make(map[string]any, len(p.Settings))
	for _, s := range p.Settings {
		settings[s.Key] = s.Default
	}

	return settings
}
