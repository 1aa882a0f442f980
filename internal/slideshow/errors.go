package slideshow

import (
	"errors"

	"github.com/danielrjepsen/Nory-sub001/internal/apiclient"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrAlreadyStarted  = errors.New("engine already started")
	ErrUnknownPhoto    = errors.New("photo is not the current slide")
)

// FetchError is a failed backend fetch kept as display state
type FetchError struct {
	Resource string `json:"resource"`
	Status   int    `json:"status"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

func (e *FetchError) Error() string {
	return e.Resource + ": " + e.Message
}

func newFetchError(resource string, err error) *FetchError {
	fe := &FetchError{Resource: resource, Message: err.Error()}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		fe.Status = apiErr.Status
		fe.Code = apiErr.Code
		fe.Message = apiErr.Message
	}
	return fe
}
