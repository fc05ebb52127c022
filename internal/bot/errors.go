package bot

import "fmt"

// UnsupportedAttachmentError reports an inbound message that carries no
// audio. The router replies with an instructive message and makes no
// provider call.
type UnsupportedAttachmentError struct {
	MIMEType string // declared MIME type of the rejected attachment, if any
}

func (e *UnsupportedAttachmentError) Error() string {
	if e.MIMEType != "" {
		return fmt.Sprintf("unsupported attachment type: %s", e.MIMEType)
	}
	return "message carries no audio attachment"
}

// AttachmentUnavailableError reports a failure to resolve a platform file
// handle into a fetchable reference. The router replies with a generic retry
// suggestion.
type AttachmentUnavailableError struct {
	FileID string
	Err    error
}

func (e *AttachmentUnavailableError) Error() string {
	return fmt.Sprintf("attachment %s unavailable: %v", e.FileID, e.Err)
}

func (e *AttachmentUnavailableError) Unwrap() error {
	return e.Err
}

// DeliveryError reports a transport failure while sending the transcript
// back to the conversation. It is not retried here; the router logs it and
// attempts one best-effort failure notice.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
