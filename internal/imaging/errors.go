package imaging

import "fmt"

// NetworkError reports a transport or HTTP-level failure while retrieving an
// image. The URL is retained so callers can surface which item failed.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports that the response body could not be decoded as an image.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image decoding error for %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
