package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Builder assembles the usual source stack: base file, optional
// environment overlay next to it, then prefixed environment variables.
type Builder struct {
	file      string
	env       string
	envPrefix string
}

func NewBuilder() *Builder {
	return &Builder{envPrefix: "SG"}
}

// WithFile sets the base config file.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithEnvironment selects the overlay file <dir>/<env>.yaml.
func (b *Builder) WithEnvironment(env string) *Builder {
	b.env = env
	return b
}

// WithEnvPrefix sets the environment variable prefix. Empty disables the env layer.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.envPrefix = prefix
	return b
}

func (b *Builder) Build() (*Loader, error) {
	loader := NewLoader()

	if b.file != "" {
		loader.AddSource(NewFileSource(b.file, 10))

		if b.env != "" {
			ext := filepath.Ext(b.file)
			overlay := filepath.Join(filepath.Dir(b.file), b.env+ext)
			loader.AddSource(NewFileSource(overlay, 20))
		}
	}

	if b.envPrefix != "" {
		loader.AddSource(NewEnvSource(b.envPrefix, 50))
	}

	if err := loader.Load(); err != nil {
		return nil, err
	}
	return loader, nil
}

// Environment resolves the running environment: SG_ENV, then APP_ENV,
// defaulting to development.
func Environment() string {
	for _, key := range []string{"SG_ENV", "APP_ENV"} {
		if env := strings.TrimSpace(os.Getenv(key)); env != "" {
			return strings.ToLower(env)
		}
	}
	return "development"
}
