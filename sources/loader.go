package sources

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

/* Loader manages inbound source configuration from sources.yaml
 * Provides in-memory lookup for fast access
 */

// Config represents the structure of sources.yaml
type Config struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig represents a single source in the YAML file
type SourceConfig struct {
	Tag             string `yaml:"tag"`
	SignatureHeader string `yaml:"signature_header"`
	TimestampHeader string `yaml:"timestamp_header"`
	SigningSecret   string `yaml:"signing_secret"`
	MaxAgeSeconds   int    `yaml:"max_age_seconds"` // Default: 300
}

// Loader holds the loaded sources
type Loader struct {
	sources map[string]*Source
}

// NewLoader creates a new source loader
func NewLoader() *Loader {
	return &Loader{
		sources: make(map[string]*Source),
	}
}

// Load reads and parses the sources.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading sources file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing sources YAML: %w", err)
	}

	for _, sc := range config.Sources {
		maxAge := sc.MaxAgeSeconds
		if maxAge == 0 {
			maxAge = 300
		}

		source := &Source{
			Tag:             sc.Tag,
			SignatureHeader: sc.SignatureHeader,
			TimestampHeader: sc.TimestampHeader,
			SigningSecret:   sc.SigningSecret,
			MaxAge:          time.Duration(maxAge) * time.Second,
		}

		if err := l.Register(source); err != nil {
			return err
		}
	}

	return nil
}

// Register validates and adds a source to the loader.
func (l *Loader) Register(source *Source) error {
	if err := source.Validate(); err != nil {
		return fmt.Errorf("validating source: %w", err)
	}
	l.sources[source.Tag] = source
	return nil
}

// Get retrieves a source by its tag
func (l *Loader) Get(tag string) (*Source, error) {
	source, exists := l.sources[tag]
	if !exists {
		return nil, fmt.Errorf("source not found: %s", tag)
	}
	return source, nil
}

// List returns all loaded sources
func (l *Loader) List() []*Source {
	sources := make([]*Source, 0, len(l.sources))
	for _, source := range l.sources {
		sources = append(sources, source)
	}
	return sources
}

// Exists checks if a source tag exists
func (l *Loader) Exists(tag string) bool {
	_, exists := l.sources[tag]
	return exists
}
