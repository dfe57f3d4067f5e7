// Package parser turns third-party acquisition notifications into the
// normalized user -> datasets structure consumed by the ingestion
// pipeline. Implementations are selected by name through a typed
// registry, so an unregistered parser is a configuration error and
// never a payload error.
package parser

import (
	"context"
	"fmt"
	"sort"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

// Parser converts a raw notification payload into a ParsedAcquisition.
// Shape and field errors fail the whole payload with
// *errdomain.MalformedNotificationError.
type Parser interface {
	Parse(ctx context.Context, payload []byte) (*datamodel.ParsedAcquisition, error)
}

// Factory builds a parser from the application configuration.
type Factory func(cfg *config.AppConfig) Parser

var registry = map[string]Factory{}

// Register adds a parser factory under a configuration name. Intended
// to be called from package init functions.
func Register(name string, f Factory) {
	registry[name] = f
}

// Names lists the registered parser names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New resolves the configured parser. A missing or unknown name is a
// *errdomain.ConfigError, surfaced before any payload is read.
func New(cfg *config.AppConfig) (Parser, error) {
	name := cfg.Parser.Name
	if name == "" {
		return nil, &errdomain.ConfigError{Option: "parser.name", Message: "not configured"}
	}
	factory, ok := registry[name]
	if !ok {
		return nil, &errdomain.ConfigError{
			Option:  "parser.name",
			Message: fmt.Sprintf("parser %q is not registered (available: %v)", name, Names()),
		}
	}
	return factory(cfg), nil
}
