package featureflag

import (
	"strings"

	"github.com/zyedidia/generic/mapset"
)

// FeatureFlag is the set of enabled feature flags.
type FeatureFlag struct {
	flags mapset.Set[Flag]
}

// New returns feature flags enabling the given flags. Names are trimmed and
// upper-cased; empty names are ignored.
func New(flags []string) FeatureFlag {
	f := FeatureFlag{flags: mapset.New[Flag]()}
	for _, name := range flags {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		f.flags.Put(Flag(name))
	}
	return f
}

// IsSet reports whether the flag is enabled.
func (f FeatureFlag) IsSet(flag Flag) bool {
	return f.flags.Size() != 0 && f.flags.Has(flag)
}

// IfSet runs do when the flag is enabled.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		do()
	}
}

// IfNotSet runs do when the flag is not enabled.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		do()
	}
}
