package gencache

import "github.com/unkn0wn-root/gencache/settings"

// Suppress turns caching off for a wrap or lookup depending on runtime
// settings. Conditions are evaluated on every call. A suppressed wrapper calls
// the function directly; a suppressed lookup never touches the store.
type Suppress struct {
	// IgnoreLocally suppresses caching when the ENV setting is "local"
	// (the default when ENV is undefined).
	IgnoreLocally bool

	// IgnoreIfSettingTrue names a setting; caching is suppressed while it
	// is truthy.
	IgnoreIfSettingTrue string
}

func (s Suppress) active(src settings.Source) bool {
	if s.IgnoreLocally && settings.IsLocal(src) {
		return true
	}
	if s.IgnoreIfSettingTrue != "" && settings.Bool(src, s.IgnoreIfSettingTrue, false) {
		return true
	}
	return false
}
