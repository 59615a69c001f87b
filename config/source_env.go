package config

import (
	"os"
	"strings"
)

// EnvSource reads prefixed environment variables.
//
// A double underscore separates levels and a single underscore is kept, so
// SG_CSRF__COOKIE_NAME maps to csrf.cookie_name.
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> env var
}

func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps an env var to a config key explicitly, e.g.
// AddBinding("jwt.secret", "JWT_SECRET") reads SG_JWT_SECRET.
func (s *EnvSource) AddBinding(key, envKey string) {
	s.bindings[key] = envKey
}

func (s *EnvSource) Name() string { return "env:" + s.prefix }

func (s *EnvSource) Priority() int { return s.priority }

func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)
	if s.prefix == "" && len(s.bindings) == 0 {
		return result, nil
	}

	prefix := s.prefix + "_"
	if s.prefix != "" {
		for _, env := range os.Environ() {
			name, value, ok := strings.Cut(env, "=")
			if !ok || !strings.HasPrefix(name, prefix) {
				continue
			}
			key := strings.ToLower(strings.TrimPrefix(name, prefix))
			key = strings.ReplaceAll(key, "__", ".")
			result[key] = value
		}
	}

	// explicit bindings win over the prefix scan
	for key, envKey := range s.bindings {
		if s.prefix != "" && !strings.HasPrefix(envKey, prefix) {
			envKey = prefix + envKey
		}
		if value, ok := os.LookupEnv(envKey); ok && value != "" {
			result[key] = value
		}
	}

	return result, nil
}
