package config

import "sync"

// Runtime configuration keys mirrored from the persisted settings record.
// Consumers (the outbound AI client) read these at call time; a missing key
// means "no override, use the env default".
const (
	KeyAIProviderFormat      = "AI_PROVIDER_FORMAT"
	KeyGoogleAPIBase         = "GOOGLE_API_BASE"
	KeyOpenAIAPIBase         = "OPENAI_API_BASE"
	KeyGoogleAPIKey          = "GOOGLE_API_KEY"
	KeyOpenAIAPIKey          = "OPENAI_API_KEY"
	KeyDefaultResolution     = "DEFAULT_RESOLUTION"
	KeyDefaultAspectRatio    = "DEFAULT_ASPECT_RATIO"
	KeyMaxDescriptionWorkers = "MAX_DESCRIPTION_WORKERS"
	KeyMaxImageWorkers       = "MAX_IMAGE_WORKERS"
)

// Runtime is the process-wide mutable configuration mirror. It is an
// explicit dependency, injected into whatever needs it, never a package
// global. Writes happen after every successful settings mutation; reads
// happen on outbound AI calls.
type Runtime struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewRuntime() *Runtime {
	return &Runtime{values: make(map[string]any)}
}

// Set stores or overwrites a key.
func (r *Runtime) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// Delete removes a key so env defaults take effect again.
func (r *Runtime) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
}

// GetString returns the string value for key and whether it is set.
func (r *Runtime) GetString(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns the int value for key and whether it is set.
func (r *Runtime) GetInt(key string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Snapshot returns a copy of all current key/value pairs.
func (r *Runtime) Snapshot() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}
