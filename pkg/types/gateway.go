package types

import "fmt"

const (
	// DefaultAuthURL is prefilled in the login form.
	DefaultAuthURL = "https://auapi.isolarcloud.com:443/openapi/apiManage/token"
	// DefaultGatewayURL is used whenever no gateway was chosen.
	DefaultGatewayURL = "https://augateway.isolarcloud.com"
)

// Gateway is one of the regional iSolarCloud API gateways.
type Gateway string

const (
	GatewayAustralia     Gateway = "Australia"
	GatewayChina         Gateway = "China"
	GatewayInternational Gateway = "International"
	GatewayEurope        Gateway = "Europe"
)

var gatewayURLs = map[Gateway]string{
	GatewayAustralia:     "https://augateway.isolarcloud.com",
	GatewayChina:         "https://gateway.isolarcloud.com",
	GatewayInternational: "https://gateway.isolarcloud.com.hk",
	GatewayEurope:        "https://gateway.isolarcloud.eu",
}

// Gateways returns the selectable gateways in display order.
func Gateways() []Gateway {
	return []Gateway{GatewayAustralia, GatewayChina, GatewayInternational, GatewayEurope}
}

// URL returns the gateway base URL.
func (g Gateway) URL() (string, error) {
	u, ok := gatewayURLs[g]
	if !ok {
		return "", fmt.Errorf("unknown gateway: %q", string(g))
	}
	return u, nil
}

// GatewayForURL finds the gateway whose base URL is u.
func GatewayForURL(u string) (Gateway, bool) {
	for g, gu := range gatewayURLs {
		if gu == u {
			return g, true
		}
	}
	return "", false
}

// GatewayOption is how a gateway is offered in the login form.
type GatewayOption struct {
	Name Gateway `json:"name"`
	URL  string  `json:"url"`
}

// GatewayOptions returns all gateways with their URLs in display order.
func GatewayOptions() []GatewayOption {
	gateways := Gateways()
	opts := make([]GatewayOption, len(gateways))
	for i, g := range gateways {
		opts[i] = GatewayOption{Name: g, URL: gatewayURLs[g]}
	}
	return opts
}
