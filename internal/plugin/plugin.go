// Package plugin defines the contract between the server and the catalog
// modules it mounts, and the registry that drives their lifecycle.
package plugin

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// HandlerFunc serves one route. On success the returned payload is encoded
// as the 200 response body. A non-nil error is rendered by the server's
// error formatter; handlers never write error bodies themselves.
type HandlerFunc func(r *http.Request) (any, error)

// Route represents an HTTP route exposed by a module.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// Pattern returns the ServeMux pattern for the route.
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

// Plugin defines the interface that every catalog module implements.
type Plugin interface {
	// Name returns the module's unique identifier (e.g., "items").
	Name() string

	// Version returns the module's semantic version.
	Version() string

	// Init configures the module from its config subtree.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start runs once before the server accepts traffic.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop() error

	// Routes returns the HTTP routes this module exposes.
	Routes() []Route
}
