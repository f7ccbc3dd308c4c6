package model_test

import (
	"testing"
	"time"

	"github.com/iliyamo/studyroom-seat-reservation/internal/model"
)

func at(hh, mm int) time.Time {
	return time.Date(2025, 3, 10, hh, mm, 0, 0, time.UTC)
}

func TestIsOpenAt(t *testing.T) {
	room := model.StudyRoom{
		Name: "Quiet Room", OpenTime: "08:00:00", CloseTime: "22:00:00", IsActive: true,
	}

	cases := []struct {
		name string
		when time.Time
		want bool
	}{
		{"before opening", at(7, 59), false},
		{"at opening", at(8, 0), true},
		{"midday", at(13, 30), true},
		{"at closing", at(22, 0), true},
		{"after closing", at(22, 1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := room.IsOpenAt(tc.when); got != tc.want {
				t.Fatalf("IsOpenAt(%s) = %v, want %v", tc.when.Format("15:04"), got, tc.want)
			}
		})
	}
}

func TestIsOpenAtInactiveRoom(t *testing.T) {
	room := model.StudyRoom{OpenTime: "08:00:00", CloseTime: "22:00:00", IsActive: false}
	if room.IsOpenAt(at(12, 0)) {
		t.Fatal("inactive room reported open")
	}
}

func TestIsOpenAt24H(t *testing.T) {
	room := model.StudyRoom{Is24H: true, IsActive: true}
	if !room.IsOpenAt(at(3, 0)) {
		t.Fatal("24h room reported closed at night")
	}
}

func TestIsOpenAtMalformedTimes(t *testing.T) {
	room := model.StudyRoom{OpenTime: "whenever", CloseTime: "22:00:00", IsActive: true}
	if room.IsOpenAt(at(12, 0)) {
		t.Fatal("room with malformed open time reported open")
	}
}

func TestParseBookingStatus(t *testing.T) {
	if _, ok := model.ParseBookingStatus("checked_in"); !ok {
		t.Fatal("checked_in not recognized")
	}
	if _, ok := model.ParseBookingStatus("held"); ok {
		t.Fatal("unknown status accepted")
	}
}

func TestTerminal(t *testing.T) {
	for st, want := range map[model.BookingStatus]bool{
		model.BookingConfirmed: false,
		model.BookingCheckedIn: false,
		model.BookingCancelled: true,
		model.BookingCompleted: true,
		model.BookingExpired:   true,
	} {
		if got := st.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v, want %v", st, got, want)
		}
	}
}
