// Package failure defines the closed set of errors produced by the evaluation
// and regeneration pipelines. Every error either is, or unwraps to, one of the
// sentinel kinds below so callers can branch with errors.Is.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpstreamVision       = errors.New("upstream vision error")
	ErrBrandNotDetected     = errors.New("brand logo could not be detected in the image")
	ErrBrandUnsupported     = errors.New("brand is not supported")
	ErrUpstreamCritique     = errors.New("upstream critique error")
	ErrMalformedCritique    = errors.New("malformed critique response")
	ErrUpstreamRegeneration = errors.New("upstream regeneration error")
	ErrNoCandidates         = errors.New("image generation returned no candidates")
	ErrUnsupportedMimeType  = errors.New("unsupported image mime type")
	ErrCatalogLoad          = errors.New("brand catalog load failed")
	ErrInvalidInput         = errors.New("invalid input")
)

// UpstreamError wraps a provider or transport failure. It matches both its
// kind sentinel and the underlying cause.
type UpstreamError struct {
	Kind    error
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s failed", e.Service)
	}
	return fmt.Sprintf("%s failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Vision wraps err as an UpstreamVisionError.
func Vision(err error) error {
	return &UpstreamError{Kind: ErrUpstreamVision, Service: "Google Cloud Vision API", Err: err}
}

// Critique wraps err as an UpstreamCritiqueError.
func Critique(err error) error {
	return &UpstreamError{Kind: ErrUpstreamCritique, Service: "Google Gemini API", Err: err}
}

// Regeneration wraps err as an UpstreamRegenerationError.
func Regeneration(err error) error {
	return &UpstreamError{Kind: ErrUpstreamRegeneration, Service: "Google Imagen API", Err: err}
}

// BrandUnsupportedError reports a logo that matched no catalog entry.
type BrandUnsupportedError struct {
	Description string
	Supported   []string
}

func (e *BrandUnsupportedError) Error() string {
	quoted := make([]string, 0, len(e.Supported))
	for _, key := range e.Supported {
		quoted = append(quoted, fmt.Sprintf("%q", key))
	}
	return fmt.Sprintf("Brand '%s' was detected but is not supported. Supported brands are: [%s]",
		e.Description, strings.Join(quoted, ", "))
}

func (e *BrandUnsupportedError) Is(target error) bool {
	return target == ErrBrandUnsupported
}

// MalformedCritiqueError reports a critique reply that failed strict decoding.
type MalformedCritiqueError struct {
	Reason string
	Err    error
}

func (e *MalformedCritiqueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedCritique, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedCritique, e.Reason)
}

func (e *MalformedCritiqueError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedCritique}
	}
	return []error{ErrMalformedCritique, e.Err}
}

// UnsupportedMimeTypeError reports a generated asset that is neither PNG nor JPEG.
type UnsupportedMimeTypeError struct {
	MIMEType string
}

func (e *UnsupportedMimeTypeError) Error() string {
	return fmt.Sprintf("unexpected MIME type from Imagen: %q", e.MIMEType)
}

func (e *UnsupportedMimeTypeError) Is(target error) bool {
	return target == ErrUnsupportedMimeType
}

// CatalogLoadError is non-fatal: the catalog falls back to empty.
type CatalogLoadError struct {
	Path string
	Err  error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("could not load brand kits from %s: %v", e.Path, e.Err)
}

func (e *CatalogLoadError) Unwrap() []error {
	return []error{ErrCatalogLoad, e.Err}
}

// Invalid reports a request that cannot be processed as submitted.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err belongs to the not-found class.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBrandNotDetected) || errors.Is(err, ErrBrandUnsupported)
}
