// Package config merges layered configuration sources into viper and decodes
// the result into the application's config structs.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader merges sources by priority.
type Loader struct {
	sources     []Source
	merged      map[string]any
	v           *viper.Viper
	loadedFiles []string
}

func NewLoader() *Loader {
	return &Loader{
		merged: make(map[string]any),
		v:      viper.New(),
	}
}

func (l *Loader) AddSource(source Source) {
	l.sources = append(l.sources, source)
}

// Load reads every source, lowest priority first, and rebuilds the viper view.
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	merged := make(map[string]any)
	var files []string
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok && len(data) > 0 {
			files = append(files, fs.path)
		}
		for key, value := range data {
			merged[key] = value
		}
	}

	l.merged = merged
	l.loadedFiles = files
	l.syncToViper()
	return nil
}

func (l *Loader) syncToViper() {
	v := viper.New()
	for key, value := range unflattenMap(l.merged) {
		v.Set(key, value)
	}
	l.v = v
}

// unflattenMap turns {"csrf.cookie_name": "x"} into {"csrf": {"cookie_name": "x"}}.
func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		setNested(result, key, value)
	}
	return result
}

func setNested(m map[string]any, key string, value any) {
	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '.' })
	if len(parts) == 0 {
		return
	}

	current := m
	for _, k := range parts[:len(parts)-1] {
		next, ok := current[k].(map[string]any)
		if !ok {
			// a scalar at an intermediate level is replaced
			next = make(map[string]any)
			current[k] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Unmarshal decodes the merged configuration into v using mapstructure tags.
func (l *Loader) Unmarshal(v any) error {
	return l.v.Unmarshal(v)
}

// UnmarshalKey decodes one section.
func (l *Loader) UnmarshalKey(key string, v any) error {
	return l.v.UnmarshalKey(key, v)
}

func (l *Loader) Get(key string) any          { return l.v.Get(key) }
func (l *Loader) GetString(key string) string { return l.v.GetString(key) }
func (l *Loader) GetInt(key string) int       { return l.v.GetInt(key) }
func (l *Loader) GetBool(key string) bool     { return l.v.GetBool(key) }
func (l *Loader) IsSet(key string) bool       { return l.v.IsSet(key) }

// LoadedFiles lists the files that contributed at least one key.
func (l *Loader) LoadedFiles() []string {
	return l.loadedFiles
}

func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) Reload() error {
	return l.Load()
}
