// Package session owns the application state: whether the user is signed in,
// the plants of the account and which plant is being looked at.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/isolarcloud"
	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/tray"
	"github.com/jameshartig/sungrowmon/pkg/types"
	"github.com/jameshartig/sungrowmon/pkg/views"
)

var (
	// ErrLoginInFlight is returned by Login while another login is running.
	ErrLoginInFlight = errors.New("a login is already in progress")
	// ErrNotAuthenticated is returned by operations that need a session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPlantNotFound is returned when selecting a plant that is not loaded.
	ErrPlantNotFound = errors.New("plant not found")
)

const (
	defaultTitle = "Sungrow iSolarCloud"

	authPendingMessage = "Authentication pending"
	authFailedMessage  = "Authentication failed"
	loadPlantsPrefix   = "Failed to load plants: "
)

// API is the part of the iSolarCloud client the session needs.
type API interface {
	GetStoredCredentials(ctx context.Context) (*types.Credentials, error)
	Authenticate(ctx context.Context, creds types.Credentials) (isolarcloud.AuthResult, error)
	Logout(ctx context.Context) error
	GetPlantList(ctx context.Context) ([]types.Plant, error)
	views.DeviceLister
	views.PointFetcher
}

var _ API = (*isolarcloud.Client)(nil)

// State is where the user is in the app.
type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StatePlantSelected   State = "plant_selected"
)

// Controller is the root of the app. All state is guarded by mu and network
// calls are made without holding it.
type Controller struct {
	api          API
	tray         tray.Updater
	pollInterval time.Duration
	now          func() time.Time

	mu            sync.Mutex
	checking      bool
	loggingIn     bool
	authenticated bool
	// gen changes whenever the session is torn down so late plant list
	// responses can be dropped
	gen      uint64
	err      string
	plants   []types.Plant
	form     views.LoginForm
	selected *types.Plant
	devices  *views.DeviceList
}

// New returns a Controller in the Loading state. Call CheckAuth to leave it.
func New(api API, updater tray.Updater, pollInterval time.Duration) *Controller {
	return &Controller{
		api:          api,
		tray:         updater,
		pollInterval: pollInterval,
		now:          time.Now,
		checking:     true,
		form:         views.DefaultLoginForm(),
	}
}

// CheckAuth resumes the stored session when it holds an unexpired access
// token and loads the plants. Storage errors are logged and leave the user
// signed out.
func (c *Controller) CheckAuth(ctx context.Context) {
	c.mu.Lock()
	c.checking = true
	c.mu.Unlock()

	resumable := false
	creds, err := c.api.GetStoredCredentials(ctx)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to load stored credentials", slog.Any("error", err))
	} else {
		resumable = creds.Resumable(c.now())
	}

	c.mu.Lock()
	c.checking = false
	var devices *views.DeviceList
	if !resumable {
		devices = c.resetLocked()
	} else {
		c.authenticated = true
	}
	c.mu.Unlock()

	if devices != nil {
		devices.Unmount()
	}
	if resumable {
		log.Ctx(ctx).InfoContext(ctx, "resumed stored session")
		c.LoadPlants(ctx)
	}
}

// Login authenticates with the form values and loads the plants on success.
// Authentication failures are shown as the session error; the returned error
// is only non-nil when the login could not be started.
func (c *Controller) Login(ctx context.Context, form views.LoginForm) error {
	c.mu.Lock()
	if c.loggingIn {
		c.mu.Unlock()
		return ErrLoginInFlight
	}
	c.loggingIn = true
	c.err = ""
	c.form = form
	gen := c.gen
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loggingIn = false
		c.mu.Unlock()
	}()

	creds, err := form.Credentials()
	if err != nil {
		c.setLoginError(gen, err.Error())
		return err
	}

	res, err := c.api.Authenticate(ctx, creds)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "authentication failed", slog.Any("error", err))
		msg := err.Error()
		if msg == "" {
			msg = authFailedMessage
		}
		c.setLoginError(gen, msg)
		return nil
	}
	if !res.Authenticated {
		msg := res.Message
		if msg == "" {
			msg = authPendingMessage
		}
		c.setLoginError(gen, msg)
		return nil
	}

	c.mu.Lock()
	ended := gen != c.gen
	if !ended {
		c.authenticated = true
	}
	c.mu.Unlock()

	if ended {
		// the user logged out while the browser flow was running, forget the
		// tokens it just stored
		log.Ctx(ctx).InfoContext(ctx, "discarding login for an ended session")
		if err := c.api.Logout(ctx); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to logout", slog.Any("error", err))
		}
		return nil
	}

	c.LoadPlants(ctx)
	return nil
}

// Logout signs out remotely and returns to the signed out baseline. A failed
// remote logout is logged only.
func (c *Controller) Logout(ctx context.Context) {
	if err := c.api.Logout(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to logout", slog.Any("error", err))
	}

	c.mu.Lock()
	devices := c.resetLocked()
	c.mu.Unlock()

	if devices != nil {
		devices.Unmount()
	}
}

// resetLocked returns to the signed out state and returns the device list the
// caller must unmount.
func (c *Controller) resetLocked() *views.DeviceList {
	devices := c.devices
	c.gen++
	c.authenticated = false
	c.err = ""
	c.plants = nil
	c.form = views.DefaultLoginForm()
	c.selected = nil
	c.devices = nil
	return devices
}

// LoadPlants fetches the plant list. A failure is shown as the session error
// and leaves an empty list.
func (c *Controller) LoadPlants(ctx context.Context) error {
	c.mu.Lock()
	if !c.authenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	gen := c.gen
	c.mu.Unlock()

	plants, err := c.api.GetPlantList(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		log.Ctx(ctx).DebugContext(ctx, "discarding plant list for an ended session")
		return nil
	}
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load plants", slog.Any("error", err))
		c.plants = []types.Plant{}
		c.err = loadPlantsPrefix + err.Error()
		return err
	}
	if plants == nil {
		plants = []types.Plant{}
	}
	log.Ctx(ctx).DebugContext(ctx, "loaded plants", slog.Int("count", len(plants)))
	c.plants = plants
	c.err = ""
	return nil
}

// SelectPlant opens the details of a loaded plant and starts loading its
// devices.
func (c *Controller) SelectPlant(ctx context.Context, psID int) error {
	c.mu.Lock()
	if !c.authenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	var plant *types.Plant
	for i := range c.plants {
		if c.plants[i].PsID == psID {
			p := c.plants[i]
			plant = &p
			break
		}
	}
	if plant == nil {
		c.mu.Unlock()
		return ErrPlantNotFound
	}
	prev := c.devices
	devices := views.NewDeviceList(c.api, c.newBattery)
	c.selected = plant
	c.devices = devices
	c.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}
	devices.Load(ctx, psID)
	return nil
}

func (c *Controller) newBattery(d types.PlantDevice) *views.Battery {
	return views.NewBattery(d, c.api, c.tray, c.pollInterval)
}

// Back returns from plant details to the plant list without any network call.
func (c *Controller) Back() {
	c.mu.Lock()
	devices := c.devices
	c.selected = nil
	c.devices = nil
	c.mu.Unlock()

	if devices != nil {
		devices.Unmount()
	}
}

// Close stops all background work.
func (c *Controller) Close() {
	c.Back()
}

// Authenticated reports whether the user is signed in.
func (c *Controller) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.checking:
		return StateLoading
	case !c.authenticated:
		return StateUnauthenticated
	case c.selected != nil:
		return StatePlantSelected
	default:
		return StateAuthenticated
	}
}

// setLoginError shows msg unless the session was reset since gen.
func (c *Controller) setLoginError(gen uint64, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.err = msg
	}
}
