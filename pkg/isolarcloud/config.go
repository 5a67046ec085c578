package isolarcloud

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jameshartig/sungrowmon/pkg/common"
	"github.com/jameshartig/sungrowmon/pkg/storage"
	"github.com/levenlabs/go-lflag"
	"golang.org/x/time/rate"
)

// Configured returns a Client configured from flags.
func Configured(store storage.CredentialStore) *Client {
	portMin := lflag.String("auth-callback-port-min", "8080", "First port tried for the local authorization callback")
	portMax := lflag.String("auth-callback-port-max", "8090", "Last port tried for the local authorization callback")
	authTimeout := lflag.Duration("auth-timeout", 5*time.Minute, "How long to wait for the authorization callback")
	timeout := lflag.Duration("isolarcloud-timeout", 30*time.Second, "Timeout for iSolarCloud API requests")
	minInterval := lflag.Duration("isolarcloud-min-interval", 0, "Minimum time between iSolarCloud API requests (0 disables limiting)")

	c := New(store)

	lflag.Do(func() {
		var err error
		if c.callbackPortMin, err = strconv.Atoi(*portMin); err != nil {
			panic(fmt.Sprintf("invalid auth-callback-port-min: %v", err))
		}
		if c.callbackPortMax, err = strconv.Atoi(*portMax); err != nil {
			panic(fmt.Sprintf("invalid auth-callback-port-max: %v", err))
		}
		if c.callbackPortMax < c.callbackPortMin {
			panic("auth-callback-port-max must not be less than auth-callback-port-min")
		}
		c.authTimeout = *authTimeout
		c.client = common.HTTPClient(*timeout)
		if *minInterval > 0 {
			c.limiter = rate.NewLimiter(rate.Every(*minInterval), 1)
		}
	})

	return c
}
