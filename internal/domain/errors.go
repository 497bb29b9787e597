package domain

import "errors"

// Domain errors.
var (
	// ErrUnsupportedURL is returned when a URL matches no supported platform.
	ErrUnsupportedURL = errors.New("unsupported source URL")

	// ErrAuthRequired is returned when direct acquisition failed with an
	// anti-automation signature. Callers prompt for fresh credentials
	// and remember the request for automatic retry.
	ErrAuthRequired = errors.New("authentication required")

	// ErrExhausted is returned when every strategy in the chain failed,
	// including the relay fallback. Callers treat this as the normal
	// unsuccessful case, not a crash.
	ErrExhausted = errors.New("all acquisition strategies exhausted")

	// ErrNoMediaURL is returned when a relay instance resolved no usable
	// media URL.
	ErrNoMediaURL = errors.New("no media URL resolved")

	// ErrJobNotFound is returned when a job cannot be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoJobs is returned when there are no jobs to process.
	ErrNoJobs = errors.New("no jobs available")

	// ErrAcquisitionNotFound is returned when a history record is missing.
	ErrAcquisitionNotFound = errors.New("acquisition not found")

	// ErrNoCookies is returned when the cookie store holds no credential file.
	ErrNoCookies = errors.New("no cookie file installed")
)

// AcquireError wraps an error with acquisition context.
type AcquireError struct {
	URL      string
	Strategy string
	Err      error
}

func (e *AcquireError) Error() string {
	if e.Strategy != "" {
		return "acquire [" + e.Strategy + "] " + e.URL + ": " + e.Err.Error()
	}
	return "acquire " + e.URL + ": " + e.Err.Error()
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// NewAcquireError creates a new AcquireError.
func NewAcquireError(url, strategy string, err error) *AcquireError {
	return &AcquireError{URL: url, Strategy: strategy, Err: err}
}
