package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/vehiclemate/internal/auth"
	"github.com/ukydev/vehiclemate/internal/connectivity"
	"github.com/ukydev/vehiclemate/internal/models"
	"github.com/ukydev/vehiclemate/internal/notify"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrForbidden   = errors.New("only garage owners can access this page")
)

// Syncer flushes work queued while offline.
type Syncer interface {
	Sync(ctx context.Context) (int, error)
}

// App is the application-wide state: the signed-in user, connectivity and
// whether the session is still loading. Construct with New and call Start.
type App struct {
	auth     *auth.Service
	observer *connectivity.Observer
	notifier notify.Notifier
	syncers  []Syncer
	logger   logrus.FieldLogger

	mu      sync.RWMutex
	user    *models.User
	loading bool

	unsubscribe func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// New wires the application state. Syncers run whenever the connection
// comes back.
func New(authSvc *auth.Service, observer *connectivity.Observer, notifier notify.Notifier, logger logrus.FieldLogger, syncers ...Syncer) *App {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &App{
		auth:     authSvc,
		observer: observer,
		notifier: notifier,
		syncers:  syncers,
		logger:   logger.WithField("component", "app"),
		loading:  true,
	}
}

// Start subscribes to connectivity changes and restores the persisted
// session. The subscription lasts until Close.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	if a.unsubscribe != nil {
		a.mu.Unlock()
		return
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.unsubscribe = a.observer.Subscribe(a.onConnectivity)
	a.mu.Unlock()

	user := a.auth.CurrentUser()

	a.mu.Lock()
	a.user = user
	a.loading = false
	a.mu.Unlock()

	if user != nil {
		a.logger.WithField("user_id", user.ID).Info("Session restored")
	}
	if !a.observer.Offline() {
		a.syncInBackground()
	}
}

// Close ends the connectivity subscription and waits for running syncs.
func (a *App) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	if a.cancel != nil {
		a.cancel()
	}
	a.unsubscribe = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	a.wg.Wait()
}

func (a *App) onConnectivity(offline bool) {
	if !offline {
		a.syncInBackground()
	}
}

func (a *App) syncInBackground() {
	a.mu.Lock()
	ctx := a.ctx
	if ctx == nil || ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		for _, s := range a.syncers {
			if _, err := s.Sync(ctx); err != nil {
				a.logger.WithError(err).Warn("Sync after reconnect failed")
			}
		}
	}()
}

// User returns the signed-in user, or nil.
func (a *App) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// SetUser replaces the signed-in user in memory.
func (a *App) SetUser(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if u == nil {
		a.user = nil
		return
	}
	cp := *u
	a.user = &cp
}

// Offline reports the current connectivity.
func (a *App) Offline() bool {
	return a.observer.Offline()
}

// Loading is true until Start has restored the session.
func (a *App) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Login signs in and makes the user current.
func (a *App) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := a.auth.Login(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.notify(notify.LevelError, "Please fill in all fields")
		} else {
			a.notify(notify.LevelError, "Failed to login. Please check your credentials.")
		}
		return nil, err
	}
	a.SetUser(user)
	a.notify(notify.LevelSuccess, fmt.Sprintf("Welcome back, %s!", user.Name))
	return user, nil
}

// Register creates an account, signs in and makes the user current.
func (a *App) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user, err := a.auth.Register(ctx, req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.notify(notify.LevelError, "Please fill in all fields")
		} else {
			a.notify(notify.LevelError, "Failed to register. Please try again.")
		}
		return nil, err
	}
	a.SetUser(user)
	a.notify(notify.LevelSuccess, fmt.Sprintf("Welcome to VehicleMate, %s!", user.Name))
	return user, nil
}

// Logout ends the session and returns the path to navigate to.
func (a *App) Logout() string {
	a.SetUser(nil)
	return a.auth.Logout()
}

// RequireOwner checks that the current user may open the owner dashboard.
// On refusal the user is told why and should be sent to the returned path.
func (a *App) RequireOwner() (string, error) {
	user := a.User()
	switch {
	case user == nil:
		a.notify(notify.LevelError, "Please login to access the garage dashboard")
		return "/login", ErrNotSignedIn
	case !user.IsGarageOwner():
		a.notify(notify.LevelError, "Only garage owners can access this page")
		return auth.RootPath, ErrForbidden
	}
	return "", nil
}

func (a *App) notify(level notify.Level, message string) {
	if a.notifier != nil {
		a.notifier.Notify(level, message)
	}
}
