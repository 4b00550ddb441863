package model

import (
	"testing"
	"time"
)

func TestPlayStatusDerivation(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	redeemed := now.Add(-time.Hour)

	cases := []struct {
		name string
		play Play
		want string
	}{
		{
			name: "active before expiry",
			play: Play{ExpiresAt: now.Add(time.Hour)},
			want: PlayStatusActive,
		},
		{
			name: "active at the exact expiry instant",
			play: Play{ExpiresAt: now},
			want: PlayStatusActive,
		},
		{
			name: "expired one second past",
			play: Play{ExpiresAt: now.Add(-time.Second)},
			want: PlayStatusExpired,
		},
		{
			name: "redeemed stays redeemed after expiry",
			play: Play{Redeemed: true, RedeemedAt: &redeemed, ExpiresAt: now.Add(-time.Hour)},
			want: PlayStatusRedeemed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.play.Status(now); got != tc.want {
				t.Errorf("Status() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMonthKeyOfUsesUTC(t *testing.T) {
	// 01:30 on August 1 in UTC+2 is still July 31 in UTC.
	loc := time.FixedZone("UTC+2", 2*3600)
	local := time.Date(2026, 8, 1, 1, 30, 0, 0, loc)
	if got := MonthKeyOf(local); got != "2026-07" {
		t.Errorf("MonthKeyOf() = %s, want 2026-07", got)
	}
	if got := MonthKeyOf(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)); got != "2026-08" {
		t.Errorf("MonthKeyOf() = %s, want 2026-08", got)
	}
}

func TestFirstOfMonth(t *testing.T) {
	in := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if got := FirstOfMonth(in); !got.Equal(want) {
		t.Errorf("FirstOfMonth() = %v, want %v", got, want)
	}
}
