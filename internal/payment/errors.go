// AngelaMos | 2026
// errors.go

package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/flashforge/internal/core"
)

// Kind classifies a gateway failure for the user facing message.
type Kind int

const (
	// KindRejected is a well-formed refusal from the gateway.
	KindRejected Kind = iota
	// KindUnavailable means the merchant cannot take payments right now,
	// for example because no payment channel is active.
	KindUnavailable
	// KindTransport covers network errors and timeouts.
	KindTransport
	// KindMalformed is a response that could not be understood.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindUnavailable:
		return "unavailable"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("paystack ")
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (http %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == core.ErrUpstream
}

// KindOf returns the failure class of err, or KindTransport for errors
// that did not come from this package.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransport
}

// unavailableCodes are gateway error codes that mean "try again later"
// rather than "this request is wrong".
var unavailableCodes = map[string]struct{}{
	"no_active_channel":   {},
	"no_active_channels":  {},
	"channel_unavailable": {},
	"service_unavailable": {},
}

const noActiveChannelText = "no active channel"

func classify(code, message string) Kind {
	if code != "" {
		if _, ok := unavailableCodes[strings.ToLower(code)]; ok {
			return KindUnavailable
		}
	}
	if strings.Contains(strings.ToLower(message), noActiveChannelText) {
		return KindUnavailable
	}
	return KindRejected
}
