package config

// Source is one layer of configuration. Layers are merged by priority, the
// higher value wins.
//
// Suggested priorities:
//   - base file (config.yaml): 10
//   - environment overlay (production.yaml): 20
//   - environment variables: 50
type Source interface {
	// Name is used in logs and errors.
	Name() string

	Priority() int

	// Load returns flattened keys, e.g. "csrf.cookie_name".
	Load() (map[string]any, error)
}
