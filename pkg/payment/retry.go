package payment

import (
	"errors"
	"net"
	"syscall"

	"github.com/stripe/stripe-go/v79"
)

// IsRetryable reports whether err is a transient provider or network
// failure worth another attempt. Card and request errors never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrProviderDown) {
		return true
	}
	return retryableStripe(err) || retryableNetwork(err) || retryableSyscall(err)
}

func retryableStripe(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	if stripeErr.HTTPStatusCode >= 500 && stripeErr.HTTPStatusCode < 600 {
		return true
	}
	switch stripeErr.Code {
	case stripe.ErrorCodeRateLimit, stripe.ErrorCodeLockTimeout:
		return true
	}
	return false
}

func retryableNetwork(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func retryableSyscall(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}
