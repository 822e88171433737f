package workflow

import "errors"

var (
	// ErrTransitionNotAllowed is returned when the order status or the user's role does not permit the action.
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	// ErrInFlight is returned when the same action on the same order is still outstanding.
	ErrInFlight = errors.New("a request for this order is already in progress")
	// ErrMalformedUpload is returned when an evidence or receipt payload is not an image.
	ErrMalformedUpload = errors.New("malformed upload")
	// ErrNoAttachment is returned when a download is asked for a file the order does not carry.
	ErrNoAttachment = errors.New("attachment not found")
)
