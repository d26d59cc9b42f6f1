package timetext

import (
	"testing"
	"time"
)

func TestDescribeSecondsTier(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	if got := Describe(reference.Add(-42*time.Second), reference); got != "42 seconds ago" {
		t.Fatalf("expected seconds phrasing, got %q", got)
	}
}

func TestDescribeTierBoundaryStaysInSmallerUnit(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	if got := Describe(reference.Add(-60*time.Second), reference); got != "60 seconds ago" {
		t.Fatalf("expected inclusive ceiling to keep the seconds tier, got %q", got)
	}
	if got := Describe(reference.Add(-61*time.Second), reference); got != "1 minute ago" {
		t.Fatalf("expected minutes tier just past the ceiling, got %q", got)
	}
}

func TestDescribeSingularizesOnlyNamedUnit(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	// 1 hour and 1 minute: the hours tier is chosen, and only "hours" is
	// singularized even though the minutes count is also 1.
	if got := Describe(reference.Add(-(time.Hour + time.Minute)), reference); got != "1 hour ago" {
		t.Fatalf("expected singular hour phrasing, got %q", got)
	}
}

func TestDescribeDaysTier(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	if got := Describe(reference.Add(-3*24*time.Hour), reference); got != "3 days ago" {
		t.Fatalf("expected days phrasing, got %q", got)
	}
}

func TestDescribeYearsTierIsUnconditional(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	at := reference.Add(-time.Duration(3*31556926) * time.Second)
	if got := Describe(at, reference); got != "3 years ago" {
		t.Fatalf("expected years phrasing, got %q", got)
	}
}

func TestDescribeFutureTense(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	if got := Describe(reference.Add(2*time.Minute+5*time.Second), reference); got != "in 2 minutes" {
		t.Fatalf("expected future phrasing, got %q", got)
	}
	if got := Describe(reference.Add(61*time.Second), reference); got != "in 1 minute" {
		t.Fatalf("expected singular future phrasing, got %q", got)
	}
}

func TestDescribeZeroDistance(t *testing.T) {
	reference := time.Unix(1700000000, 0)
	if got := Describe(reference, reference); got != "0 seconds ago" {
		t.Fatalf("expected zero distance to phrase in past seconds, got %q", got)
	}
}
