package gencache

// Hooks are lightweight callbacks for cache events.
// Implementations MUST be cheap and non-blocking; they run on the call path.
// Wrap slow implementations with hooks/async.
//
// identity is the wrapped function identity, or DirectIdentity for the
// Get/Set/Delete facade.
type Hooks interface {
	// A value was served from the store.
	Hit(identity string)

	// No usable value was stored; for wrapped calls the function runs next.
	Miss(identity string)

	// Suppress was active; the store was not consulted.
	Suppressed(identity string)

	// A generation counter was bumped to value. generation is the name
	// ("profile" for "profile:user_id"); suffix identifies the counter
	// ("user_id:42").
	GenerationBumped(generation, suffix string, value uint64)

	// An unreadable entry was deleted on read.
	// reason ∈ {"corrupt", "value_decode"}
	SelfHeal(storageKey, reason string)

	// A store call failed. op ∈ {"get", "set", "delete", "snapshot", "bump", "encode"}
	StoreError(op string, err error)
}

// DirectIdentity labels events raised by the direct facade.
const DirectIdentity = "direct"

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                              {}
func (NopHooks) Miss(string)                             {}
func (NopHooks) Suppressed(string)                       {}
func (NopHooks) GenerationBumped(string, string, uint64) {}
func (NopHooks) SelfHeal(string, string)                 {}
func (NopHooks) StoreError(string, error)                {}
