package event

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEventString(t *testing.T) {
	cases := []struct {
		ev   Event
		want string
	}{
		{Event{Kind: KindButton, Tick: 12, Pressed: true, Count: 3}, "btn down #3"},
		{Event{Kind: KindButton, Tick: 12, Count: 3}, "btn up #3"},
		{Event{Kind: KindClock, Time: time.Date(2024, 1, 1, 9, 8, 7, 0, time.UTC), TempMC: 23750}, "rtc 09:08:07 23.75C"},
		{Event{Kind: KindClock, Time: time.Date(2024, 1, 1, 9, 8, 7, 0, time.UTC), TempMC: -500}, " -0.50C"},
		{Event{Kind: KindClock, Time: time.Date(2024, 1, 1, 9, 8, 7, 0, time.UTC), TempMC: -12250}, " -12.25C"},
		{Event{Kind: KindClock, Err: errors.New("nak")}, "rtc err nak"},
		{Event{Kind: KindPingPong, Count: 9}, "ping 9"},
		{Event{Kind: KindHeartbeat, Count: 2}, "beat 2"},
	}
	for _, tc := range cases {
		if got := tc.ev.String(); !strings.HasSuffix(got, tc.want) {
			t.Errorf("String() = %q, want suffix %q", got, tc.want)
		}
	}
}

func TestPostDropsWhenFull(t *testing.T) {
	if Post(nil, Event{}) {
		t.Fatal("Post(nil) = true")
	}
	var bus Bus
	n := 0
	for Post(&bus, Event{Kind: KindHeartbeat}) {
		n++
	}
	if n != bus.Len() || n == 0 {
		t.Fatalf("posted %d, queued %d", n, bus.Len())
	}
}
