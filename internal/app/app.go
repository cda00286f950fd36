// Package app wires the session core together and owns its lifecycle.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dev-catena/lacos-sub000/internal/api"
	"github.com/dev-catena/lacos-sub000/internal/config"
	"github.com/dev-catena/lacos-sub000/internal/deeplink"
	"github.com/dev-catena/lacos-sub000/internal/format"
	"github.com/dev-catena/lacos-sub000/internal/invite"
	"github.com/dev-catena/lacos-sub000/internal/notify"
	"github.com/dev-catena/lacos-sub000/internal/router"
	"github.com/dev-catena/lacos-sub000/internal/session"
	"github.com/dev-catena/lacos-sub000/internal/storage"
)

// Options overrides the collaborators New would otherwise build from the
// configuration. Zero fields get the default.
type Options struct {
	Config    *config.Config
	Backend   session.Backend
	Store     storage.Store
	Source    deeplink.Source
	Navigator *router.HeadlessNavigator
	Notifier  notify.Notifier
	Logger    *slog.Logger
}

// App is one running instance of the core.
type App struct {
	Session    *session.Controller
	Resolver   *deeplink.Resolver
	Gateway    *router.Gateway
	Reconciler *router.Reconciler
	Queue      *invite.Queue
	Navigator  *router.HeadlessNavigator

	store    storage.Store
	source   deeplink.Source
	notifier notify.Notifier
	loc      *notify.Localizer
	logger   *slog.Logger

	mu      sync.Mutex
	unsubs  []func()
	started bool
	closed  bool
}

// New builds the components. Nothing runs until Start.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Get()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = storage.Open(StorageOptions(cfg.Storage))
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
	}

	backend := opts.Backend
	if backend == nil {
		backend = api.NewClient(cfg.Server.URL, cfg.Server.TimeoutDuration())
	}

	source := opts.Source
	if source == nil {
		source = deeplink.NewChannelSource("")
	}

	nav := opts.Navigator
	if nav == nil {
		nav = router.NewHeadlessNavigator()
	}

	loc := notify.NewLocalizer(cfg.Locale)
	notifier := notify.Log(logger)
	if opts.Notifier != nil {
		notifier = notify.Fanout(opts.Notifier, notifier)
	}

	a := &App{
		Resolver: deeplink.NewResolver(deeplink.Rules{
			Scheme:      cfg.DeepLink.Scheme,
			Hosts:       cfg.DeepLink.Hosts,
			DevPrefixes: cfg.DeepLink.DevPrefixes,
		}),
		Gateway:   router.NewGateway(),
		Navigator: nav,
		store:     store,
		source:    source,
		notifier:  notifier,
		loc:       loc,
		logger:    logger,
	}

	a.Session = session.New(session.Options{
		Backend:   backend,
		Store:     store,
		Notifier:  notifier,
		Localizer: loc,
		Logger:    logger,
	})
	a.Queue = invite.New(invite.Options{
		Dispatcher: a.Gateway,
		Notifier:   notifier,
		Localizer:  loc,
		Attempts:   cfg.Routing.Attempts(),
		Interval:   cfg.Routing.DrainIntervalDuration(),
		Logger:     logger,
	})
	a.Reconciler = router.NewReconciler(router.ReconcilerOptions{
		Gateway:    a.Gateway,
		Session:    a.Session,
		Queue:      a.Queue,
		ResetDelay: cfg.Routing.ResetDelayDuration(),
		OnDecision: nav.Mount,
		Logger:     logger,
	})
	return a, nil
}

// StorageOptions maps the storage configuration, giving the SQLite driver a
// .db file when the path still has the YAML default extension.
func StorageOptions(cfg config.StorageConfig) storage.Options {
	path := cfg.Path
	if strings.EqualFold(cfg.Driver, "sqlite") && strings.EqualFold(filepath.Ext(path), ".yaml") {
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
	}
	return storage.Options{Driver: cfg.Driver, Path: path, EncryptionKey: cfg.EncryptionKey}
}

// Start subscribes the reconciler, mounts the navigator, takes the launch
// deep link and bootstraps the session.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return fmt.Errorf("app is closed")
	}
	if a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.unsubs = append(a.unsubs, a.Session.Subscribe(a.Reconciler.Observe))
	a.mu.Unlock()

	a.Reconciler.Evaluate()
	a.Gateway.Attach(a.Navigator)

	if uri, ok := a.source.Initial(ctx); ok {
		a.HandleLink(ctx, uri)
	}
	unsubscribe := a.source.Subscribe(func(uri string) {
		a.HandleLink(context.Background(), uri)
	})
	a.mu.Lock()
	a.unsubs = append(a.unsubs, unsubscribe)
	a.mu.Unlock()

	snap := a.Session.Bootstrap(ctx)
	if snap.State != session.StateAuthenticated {
		if code, ok := a.Queue.Pending(); ok {
			a.notifier.Notify(ctx, a.loc.Event(notify.Warning, notify.KeyInviteLoginRequired, code))
		}
	}
	a.logger.Info("Session core started", "state", snap.State.String())
	return nil
}

// HandleLink resolves uri and hands any code to the invitation queue.
func (a *App) HandleLink(ctx context.Context, uri string) (string, bool) {
	code, ok := a.Resolver.Resolve(uri)
	if !ok {
		a.logger.Debug("Ignoring deep link without invitation")
		return "", false
	}
	remind := a.Session.Snapshot().State != session.StateLoading
	a.Queue.Offer(ctx, code, remind)
	return code, true
}

// Close unsubscribes from the session and the deep-link transport, stops
// pending work and closes the store. It is safe to call more than once.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	unsubs := a.unsubs
	a.unsubs = nil
	a.mu.Unlock()

	for i := len(unsubs) - 1; i >= 0; i-- {
		unsubs[i]()
	}
	a.Reconciler.Close()
	a.Queue.Close()
	return a.store.Close()
}

// Launch builds an App from the global configuration, with notifications
// rendered to out, and starts it. Used by the one-shot commands.
func Launch(ctx context.Context, out io.Writer) (*App, error) {
	cfg := config.Get()
	a, err := New(Options{
		Config:   cfg,
		Notifier: format.NewPresenter(out, cfg.Format.Colors),
	})
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
