package catalog

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/HerbHall/wakdex/internal/docstore"
	"github.com/HerbHall/wakdex/internal/envelope"
	"github.com/HerbHall/wakdex/internal/plugin"
)

// Compile-time interface guard.
var _ plugin.Plugin = (*Module[struct{}, struct{}])(nil)

// Module exposes a Resource over HTTP as a plugin:
//
//	GET /{name}/{locale}       paginated list
//	GET /{name}/{locale}/{id}  single record
type Module[F, D any] struct {
	svc     *Service[F, D]
	exec    *docstore.Executor
	env     *envelope.Builder
	version string
	logger  *zap.Logger
}

// NewModule wires res to exec. Envelopes are stamped by env.
func NewModule[F, D any](res Resource[F, D], exec *docstore.Executor, env *envelope.Builder, version string) *Module[F, D] {
	return &Module[F, D]{
		svc:     NewService(res, exec),
		exec:    exec,
		env:     env,
		version: version,
		logger:  zap.NewNop(),
	}
}

func (m *Module[F, D]) Name() string    { return m.svc.res.Name() }
func (m *Module[F, D]) Version() string { return m.version }

// Service returns the module's pipeline.
func (m *Module[F, D]) Service() *Service[F, D] { return m.svc }

func (m *Module[F, D]) Init(_ *viper.Viper, logger *zap.Logger) error {
	if logger != nil {
		m.logger = logger
	}
	return nil
}

// Start logs the size of the backing collection. An unreachable store is
// reported but not fatal; /health surfaces it to operators.
func (m *Module[F, D]) Start(ctx context.Context) error {
	n, err := m.exec.Store().Count(ctx, m.Name(), nil)
	if err != nil {
		m.logger.Warn("collection not readable", zap.Error(err))
		return nil
	}
	if n == 0 {
		m.logger.Warn("collection is empty; run `wakdex seed` to load fixtures")
		return nil
	}
	m.logger.Info("collection ready", zap.Int("documents", n))
	return nil
}

func (m *Module[F, D]) Stop() error { return nil }

func (m *Module[F, D]) Routes() []plugin.Route {
	base := "/" + m.Name() + "/{locale}"
	return []plugin.Route{
		{Method: http.MethodGet, Path: base, Handler: m.handleList},
		{Method: http.MethodGet, Path: base + "/{id}", Handler: m.handleGet},
	}
}

func (m *Module[F, D]) handleList(r *http.Request) (any, error) {
	page, err := m.svc.Find(r.Context(), r.PathValue("locale"), r.URL.Query())
	if err != nil {
		return nil, err
	}
	return envelope.Page(m.env, page.Data, page.Opts, page.Total), nil
}

func (m *Module[F, D]) handleGet(r *http.Request) (any, error) {
	d, err := m.svc.FindOne(r.Context(), r.PathValue("locale"), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	return m.env.Single(d), nil
}
