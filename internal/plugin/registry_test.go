package plugin

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type stubModule struct {
	name    string
	initErr error
	stops   *[]string
	sub     *viper.Viper
	started bool
}

func (m *stubModule) Name() string    { return m.name }
func (m *stubModule) Version() string { return "0.0.1" }

func (m *stubModule) Init(config *viper.Viper, _ *zap.Logger) error {
	m.sub = config
	return m.initErr
}

func (m *stubModule) Start(context.Context) error {
	m.started = true
	return nil
}

func (m *stubModule) Stop() error {
	if m.stops != nil {
		*m.stops = append(*m.stops, m.name)
	}
	return nil
}

func (m *stubModule) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/" + m.name + "/{locale}", Handler: func(*http.Request) (any, error) {
		return m.name, nil
	}}}
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	if err := r.Register(&stubModule{name: "items"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&stubModule{name: "items"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if got := len(r.All()); got != 1 {
		t.Errorf("All() = %d modules, want 1", got)
	}
}

func TestInitAll_DisabledModuleSkipped(t *testing.T) {
	v := viper.New()
	v.Set("modules.actions.enabled", false)
	v.Set("modules.items.page_hint", 25)

	items := &stubModule{name: "items"}
	actions := &stubModule{name: "actions"}
	r := NewRegistry(zap.NewNop())
	_ = r.Register(items)
	_ = r.Register(actions)

	if err := r.InitAll(v); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}

	if !items.started || actions.started {
		t.Errorf("started: items=%v actions=%v, want true/false", items.started, actions.started)
	}
	if items.sub == nil || items.sub.GetInt("page_hint") != 25 {
		t.Error("items did not receive its config subtree")
	}
	if got := r.Names(); len(got) != 1 || got[0] != "items" {
		t.Errorf("Names() = %v, want [items]", got)
	}
	if _, ok := r.AllRoutes()["actions"]; ok {
		t.Error("disabled module routes must not be mounted")
	}
	if _, ok := r.Get("actions"); !ok {
		t.Error("disabled module should still be retrievable")
	}
}

func TestInitAll_PropagatesError(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	_ = r.Register(&stubModule{name: "resources", initErr: errors.New("bad config")})

	err := r.InitAll(nil)
	if err == nil || !strings.Contains(err.Error(), `"resources"`) {
		t.Fatalf("InitAll() error = %v, want wrapped module error", err)
	}
}

func TestStopAll_ReverseOrder(t *testing.T) {
	var stops []string
	r := NewRegistry(zap.NewNop())
	for _, n := range []string{"items", "actions", "resources"} {
		_ = r.Register(&stubModule{name: n, stops: &stops})
	}
	if err := r.InitAll(nil); err != nil {
		t.Fatal(err)
	}
	r.StopAll()

	if got := strings.Join(stops, ","); got != "resources,actions,items" {
		t.Errorf("stop order = %s", got)
	}
}

func TestRoutePattern(t *testing.T) {
	m := &stubModule{name: "items"}
	rt := m.Routes()[0]
	if got := rt.Pattern(); got != "GET /items/{locale}" {
		t.Errorf("Pattern() = %q", got)
	}
	payload, err := rt.Handler(nil)
	if err != nil || payload != "items" {
		t.Errorf("Handler() = %v, %v", payload, err)
	}
}
