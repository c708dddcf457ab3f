package connectivity

import "errors"

// Presentation is how the UI should react to an error.
type Presentation int

const (
	// PresentNothing: log at most.
	PresentNothing Presentation = iota
	// PresentAdvisory: a dismissible, non-fatal connectivity notice.
	PresentAdvisory
	// PresentLoginRedirect: send the user to login without an error dialog.
	PresentLoginRedirect
	// PresentError: a regular error message.
	PresentError
)

// Surface is the presentation decision for one error.
type Surface struct {
	Presentation Presentation
	Title        string
	Message      string
}

// Show reports whether anything should be displayed to the user.
func (s Surface) Show() bool {
	return s.Presentation == PresentAdvisory || s.Presentation == PresentError
}

// AdvisoryCauses lists the likely reasons a backend cannot be reached.
var AdvisoryCauses = []string{
	"the server is not running",
	"the port is blocked by a firewall",
	"the network is unreachable from this device",
}

// SurfaceFor maps an error to its presentation. It is the only place where
// presentation policy is decided.
func SurfaceFor(err error) Surface {
	switch Classify(err) {
	case KindNone, KindCanceled:
		return Surface{Presentation: PresentNothing}
	case KindConnectivity:
		msg := "Cannot reach the FinWise server."
		if errors.Is(err, ErrOffline) {
			msg = "This device is offline."
		}
		return Surface{
			Presentation: PresentAdvisory,
			Title:        "Connection problem",
			Message:      msg,
		}
	case KindAuthentication:
		return Surface{
			Presentation: PresentLoginRedirect,
			Title:        "Session expired",
			Message:      "Please log in again.",
		}
	case KindApplication:
		var appErr *ApplicationError
		errors.As(err, &appErr)
		msg := appErr.Message
		if msg == "" {
			msg = err.Error()
		}
		return Surface{Presentation: PresentError, Title: "Request failed", Message: msg}
	default:
		return Surface{Presentation: PresentError, Title: "Error", Message: err.Error()}
	}
}
