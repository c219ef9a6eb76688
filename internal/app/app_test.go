package app

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/ispell/ispell/internal/api"
	"github.com/ispell/ispell/internal/config"
	"github.com/ispell/ispell/internal/creds"
	"github.com/ispell/ispell/internal/screens/home"
	"github.com/ispell/ispell/internal/screens/login"
)

func newTestOptions(t *testing.T) (Options, *creds.Store) {
	t.Helper()
	cs := creds.New(creds.NewMemory())
	return Options{
		Config: config.Default(),
		Log:    zap.NewNop(),
		Creds:  cs,
		Client: api.New("http://127.0.0.1:0", cs),
	}, cs
}

func TestStartsOnLoginWhenLoggedOut(t *testing.T) {
	opts, _ := newTestOptions(t)

	m := newAppModel(opts)

	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Fatalf("initial screen = %T, want *login.LoginScreen", m.router.Active())
	}
	// The header renders the username on every frame; logged out it
	// must come back empty instead of panicking.
	if got := m.username(); got != "" {
		t.Errorf("username = %q, want empty", got)
	}
}

func TestStartsOnHomeWhenLoggedIn(t *testing.T) {
	opts, cs := newTestOptions(t)
	user, err := json.Marshal(api.User{ID: 1, Username: "ada"})
	if err != nil {
		t.Fatal(err)
	}
	c := creds.Credentials{AccessToken: "acc", RefreshToken: "ref", UserJSON: string(user)}
	if err := cs.SaveLogin(c, true); err != nil {
		t.Fatal(err)
	}

	m := newAppModel(opts)

	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Fatalf("initial screen = %T, want *home.HomeScreen", m.router.Active())
	}
	if got := m.username(); got != "ada" {
		t.Errorf("username = %q, want ada", got)
	}
}
