package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jameshartig/sungrowmon/pkg/types"
)

// ErrInvalidForm is wrapped by every LoginForm validation error.
var ErrInvalidForm = errors.New("invalid login form")

// LoginForm is what the user enters to connect an iSolarCloud account.
type LoginForm struct {
	AppKey    string        `json:"appKey"`
	SecretKey string        `json:"secretKey"`
	AuthURL   string        `json:"authUrl"`
	Gateway   types.Gateway `json:"gateway"`
}

// DefaultLoginForm returns the form as it is first shown.
func DefaultLoginForm() LoginForm {
	return LoginForm{
		AuthURL: types.DefaultAuthURL,
		Gateway: types.GatewayAustralia,
	}
}

// Validate rejects empty required fields and gateways outside the fixed list.
func (f LoginForm) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"appKey", f.AppKey},
		{"secretKey", f.SecretKey},
		{"authUrl", f.AuthURL},
		{"gateway", string(f.Gateway)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidForm, r.name)
		}
	}
	if _, err := f.Gateway.URL(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	return nil
}

// Credentials converts a valid form into the credentials to authenticate
// with.
func (f LoginForm) Credentials() (types.Credentials, error) {
	if err := f.Validate(); err != nil {
		return types.Credentials{}, err
	}
	gatewayURL, _ := f.Gateway.URL()
	return types.Credentials{
		AppKey:     strings.TrimSpace(f.AppKey),
		SecretKey:  strings.TrimSpace(f.SecretKey),
		AuthURL:    strings.TrimSpace(f.AuthURL),
		GatewayURL: gatewayURL,
	}, nil
}

// LoginView is the login screen.
type LoginView struct {
	Form        LoginForm             `json:"form"`
	Gateways    []types.GatewayOption `json:"gateways"`
	Loading     bool                  `json:"loading"`
	SubmitLabel string                `json:"submitLabel"`
}

// NewLoginView renders form. While loading the submit control is disabled.
func NewLoginView(form LoginForm, loading bool) LoginView {
	label := "Authenticate"
	if loading {
		label = "Authenticating..."
	}
	return LoginView{
		Form:        form,
		Gateways:    types.GatewayOptions(),
		Loading:     loading,
		SubmitLabel: label,
	}
}
