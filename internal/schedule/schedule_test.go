package schedule_test

import (
	"strings"
	"testing"

	"howett.net/plist"

	"photomise/internal/schedule"
)

func TestParseTimes(t *testing.T) {
	spec, err := schedule.ParseTimes("30 9,18")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Minute != 30 {
		t.Fatalf("minute: %d", spec.Minute)
	}
	if len(spec.Hours) != 2 || spec.Hours[0] != 9 || spec.Hours[1] != 18 {
		t.Fatalf("hours: %v", spec.Hours)
	}
}

func TestParseTimesDeduplicatesAndSorts(t *testing.T) {
	spec, err := schedule.ParseTimes("0 18,9,18")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(spec.Hours) != 2 || spec.Hours[0] != 9 || spec.Hours[1] != 18 {
		t.Fatalf("hours: %v", spec.Hours)
	}
}

func TestParseTimesRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "30", "30 24", "60 9", "mm hh", "30 9 18"} {
		if _, err := schedule.ParseTimes(input); err == nil {
			t.Errorf("input %q should fail", input)
		}
	}
}

func TestPlistRoundTrip(t *testing.T) {
	spec, err := schedule.ParseTimes("15 8,20")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	data, err := schedule.Plist(schedule.Job{
		Project:    "brooklyn",
		Executable: "/usr/local/bin/photomise",
		Args:       []string{"post", "brooklyn", "--random"},
		LogDir:     "/tmp/logs",
	}, spec)
	if err != nil {
		t.Fatalf("plist: %v", err)
	}

	var decoded struct {
		Label                 string   `plist:"Label"`
		ProgramArguments      []string `plist:"ProgramArguments"`
		StartCalendarInterval []struct {
			Minute int `plist:"Minute"`
			Hour   int `plist:"Hour"`
		} `plist:"StartCalendarInterval"`
	}
	if _, err := plist.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Label != "click.blueribbon.brooklyn" {
		t.Fatalf("label: %q", decoded.Label)
	}
	if len(decoded.ProgramArguments) != 4 || decoded.ProgramArguments[1] != "post" {
		t.Fatalf("args: %v", decoded.ProgramArguments)
	}
	if len(decoded.StartCalendarInterval) != 2 {
		t.Fatalf("intervals: %v", decoded.StartCalendarInterval)
	}
	if decoded.StartCalendarInterval[0].Minute != 15 || decoded.StartCalendarInterval[0].Hour != 8 {
		t.Fatalf("first interval: %+v", decoded.StartCalendarInterval[0])
	}

	if !strings.Contains(string(data), "<?xml") {
		t.Fatal("expected XML plist output")
	}
}

func TestPlistRejectsEmptySchedule(t *testing.T) {
	if _, err := schedule.Plist(schedule.Job{Project: "p"}, schedule.Spec{Minute: 0}); err == nil {
		t.Fatal("expected error for empty schedule")
	}
}
