package models

import (
	"errors"
	"fmt"
)

// ErrEmptyPlan means no activities could be extracted or resolved from the
// user's text. This is the only fatal planning error.
var ErrEmptyPlan = errors.New("no plannable activities found; please describe what you want to do with a bit more detail")

// ProviderKind names an external collaborator
type ProviderKind string

const (
	ProviderExtractor  ProviderKind = "extractor"
	ProviderPlaces     ProviderKind = "places"
	ProviderDirections ProviderKind = "directions"
	ProviderWeather    ProviderKind = "weather"
)

// ProviderError wraps a failure from an external provider. Transient errors
// are retried once by callers; permanent ones degrade immediately.
type ProviderError struct {
	Kind      ProviderKind
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UnresolvableLocationError marks a single activity whose location could not
// be matched with sufficient confidence. The activity is dropped from the
// plan; the request as a whole proceeds.
type UnresolvableLocationError struct {
	Description string
	Hint        string
}

func (e *UnresolvableLocationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("could not confidently match a venue for %q near %q", e.Description, e.Hint)
	}
	return fmt.Sprintf("could not confidently match a venue for %q", e.Description)
}
