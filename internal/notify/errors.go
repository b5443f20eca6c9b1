package notify

import "errors"

var (
	// ErrDeliveryFailed indicates the transport could not deliver a message.
	ErrDeliveryFailed = errors.New("message delivery failed")
	// ErrRenderFailed indicates the report attachment could not be produced.
	ErrRenderFailed = errors.New("report rendering failed")
)
