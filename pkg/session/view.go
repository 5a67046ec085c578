package session

import "github.com/jameshartig/sungrowmon/pkg/views"

// View is everything needed to render the app at one point in time.
type View struct {
	State         State               `json:"state"`
	Authenticated bool                `json:"authenticated"`
	Connection    string              `json:"connection"`
	Title         string              `json:"title"`
	Error         string              `json:"error,omitempty"`
	Login         *views.LoginView    `json:"login,omitempty"`
	Plants        *views.PlantList    `json:"plants,omitempty"`
	Details       *views.PlantDetails `json:"details,omitempty"`
}

// Snapshot renders the current state.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:         c.stateLocked(),
		Authenticated: c.authenticated,
		Connection:    "Disconnected",
		Title:         defaultTitle,
		Error:         c.err,
	}
	if c.authenticated {
		v.Connection = "Connected"
	}

	switch v.State {
	case StateUnauthenticated:
		lv := views.NewLoginView(c.form, c.loggingIn)
		v.Login = &lv
	case StateAuthenticated:
		pl := views.NewPlantList(c.plants)
		v.Plants = &pl
	case StatePlantSelected:
		v.Title = c.selected.PsName
		var devices views.DeviceListView
		if c.devices != nil {
			devices = c.devices.View()
		}
		d := views.NewPlantDetails(*c.selected, devices)
		v.Details = &d
	}
	return v
}
