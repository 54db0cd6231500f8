package failure

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUpstreamErrorMatchesKindAndCause(t *testing.T) {
	err := Vision(context.DeadlineExceeded)
	if !errors.Is(err, ErrUpstreamVision) {
		t.Fatalf("expected vision kind")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be preserved")
	}
	if errors.Is(err, ErrUpstreamCritique) {
		t.Fatalf("vision error must not match critique kind")
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.Service != "Google Cloud Vision API" {
		t.Fatalf("expected UpstreamError with service name, got %#v", upstream)
	}
}

func TestNotFoundClass(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"not detected", ErrBrandNotDetected, true},
		{"unsupported", &BrandUnsupportedError{Description: "Acme", Supported: []string{"nike"}}, true},
		{"malformed", &MalformedCritiqueError{Reason: "refinement_plan missing"}, false},
		{"upstream", Regeneration(errors.New("boom")), false},
		{"no candidates", ErrNoCandidates, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNotFound(tc.err); got != tc.notFound {
				t.Fatalf("expected %v got %v", tc.notFound, got)
			}
		})
	}
}

func TestBrandUnsupportedMessageListsKeys(t *testing.T) {
	err := &BrandUnsupportedError{Description: "Acme", Supported: []string{"cocacola", "nike"}}
	msg := err.Error()
	for _, want := range []string{"Acme", `"cocacola"`, `"nike"`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	if !errors.Is(&UnsupportedMimeTypeError{MIMEType: "image/gif"}, ErrUnsupportedMimeType) {
		t.Fatalf("expected unsupported mime sentinel")
	}
	if !errors.Is(&MalformedCritiqueError{Reason: "x"}, ErrMalformedCritique) {
		t.Fatalf("expected malformed sentinel")
	}
	cause := errors.New("disk gone")
	loadErr := &CatalogLoadError{Path: "db.json", Err: cause}
	if !errors.Is(loadErr, ErrCatalogLoad) || !errors.Is(loadErr, cause) {
		t.Fatalf("expected catalog load error to unwrap to sentinel and cause")
	}
	if !errors.Is(Invalid("image is %s", "empty"), ErrInvalidInput) {
		t.Fatalf("expected invalid input sentinel")
	}
}
