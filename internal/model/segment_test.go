package model

import "testing"

func TestParseSegment(t *testing.T) {
	cases := []struct {
		in      string
		want    Segment
		wantErr bool
	}{
		{"SUBSCRIBER", SegmentSubscriber, false},
		{"non_subscriber", SegmentNonSubscriber, false},
		{"  both  ", SegmentBoth, false},
		{"", "", true},
		{"EVERYONE", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSegment(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseSegment(%q) expected error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSegment(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseSegment(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestSegmentPools(t *testing.T) {
	if got := SegmentSubscriber.Pools(); len(got) != 1 || got[0] != SegmentSubscriber {
		t.Errorf("SUBSCRIBER pools = %v", got)
	}
	both := SegmentBoth.Pools()
	if len(both) != 2 || both[0] != SegmentSubscriber || both[1] != SegmentNonSubscriber {
		t.Errorf("BOTH pools = %v", both)
	}
}

func TestSegmentFor(t *testing.T) {
	if SegmentFor(true) != SegmentSubscriber {
		t.Error("subscriber flag should map to SUBSCRIBER pool")
	}
	if SegmentFor(false) != SegmentNonSubscriber {
		t.Error("missing subscription should map to NON_SUBSCRIBER pool")
	}
}
