package guestpass_test

import (
	"testing"

	"residence-access/models/guestpass"
)

func TestWindowEnd(t *testing.T) {
	if got := guestpass.WindowEnd(1000, 10); got != 1600 {
		t.Fatalf("WindowEnd(1000, 10) = %d, want 1600", got)
	}
}

func TestWindowExpired(t *testing.T) {
	cases := []struct {
		name            string
		visitTime       int64
		durationMinutes int64
		now             int64
		want            bool
	}{
		{"before window", 1000, 10, 500, false},
		{"at window start", 1000, 10, 1000, false},
		{"inside window", 1000, 10, 1599, false},
		{"exactly at boundary", 1000, 10, 1600, true},
		{"past boundary", 1000, 10, 1700, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := guestpass.WindowExpired(tc.visitTime, tc.durationMinutes, tc.now)
			if got != tc.want {
				t.Fatalf("WindowExpired(%d, %d, %d) = %t, want %t",
					tc.visitTime, tc.durationMinutes, tc.now, got, tc.want)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	cases := []struct {
		name            string
		visitTime       int64
		durationMinutes int64
		now             int64
		want            bool
	}{
		{"before visit time", 1000, 10, 999, false},
		{"at visit time", 1000, 10, 1000, true},
		{"last second inside", 1000, 10, 1599, true},
		{"at boundary", 1000, 10, 1600, false},
		{"well past", 1000, 10, 9999, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := guestpass.WindowContains(tc.visitTime, tc.durationMinutes, tc.now)
			if got != tc.want {
				t.Fatalf("WindowContains(%d, %d, %d) = %t, want %t",
					tc.visitTime, tc.durationMinutes, tc.now, got, tc.want)
			}
		})
	}
}

// A pass expired and a pass authorizing entry are mutually exclusive, and
// a future-dated pass is neither.
func TestWindowStates(t *testing.T) {
	const visit, duration = 1000, 10

	for now := int64(900); now < 1700; now += 50 {
		expired := guestpass.WindowExpired(visit, duration, now)
		contains := guestpass.WindowContains(visit, duration, now)
		if expired && contains {
			t.Fatalf("window both expired and containing at now=%d", now)
		}
	}
}
