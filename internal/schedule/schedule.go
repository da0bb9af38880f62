// Package schedule generates launchd property lists that run posting on
// a timer.
package schedule

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"howett.net/plist"
)

const labelPrefix = "click.blueribbon."

// Spec is a daily schedule: one minute value shared by one or more
// hours.
type Spec struct {
	Minute int
	Hours  []int
}

// ParseTimes parses a schedule of the form "mm hh" or "mm hh,hh,...",
// e.g. "30 9,18" for 09:30 and 18:30 daily.
func ParseTimes(input string) (Spec, error) {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) != 2 {
		return Spec{}, fmt.Errorf("schedule must be \"mm hh[,hh...]\", got %q", input)
	}

	minute, err := strconv.Atoi(fields[0])
	if err != nil || minute < 0 || minute > 59 {
		return Spec{}, fmt.Errorf("invalid minute %q", fields[0])
	}

	var hours []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(fields[1], ",") {
		hour, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || hour < 0 || hour > 23 {
			return Spec{}, fmt.Errorf("invalid hour %q", part)
		}
		if seen[hour] {
			continue
		}
		seen[hour] = true
		hours = append(hours, hour)
	}
	sort.Ints(hours)

	return Spec{Minute: minute, Hours: hours}, nil
}

// Label returns the launchd job label for a project.
func Label(project string) string {
	return labelPrefix + project
}

type calendarInterval struct {
	Minute int `plist:"Minute"`
	Hour   int `plist:"Hour"`
}

type launchdJob struct {
	Label                 string             `plist:"Label"`
	ProgramArguments      []string           `plist:"ProgramArguments"`
	StartCalendarInterval []calendarInterval `plist:"StartCalendarInterval"`
	StandardOutPath       string             `plist:"StandardOutPath"`
	StandardErrorPath     string             `plist:"StandardErrorPath"`
}

// Job describes the posting command the timer should run.
type Job struct {
	Project    string
	Executable string
	Args       []string
	LogDir     string
}

// Plist renders the launchd XML property list for the job on the given
// schedule.
func Plist(job Job, spec Spec) ([]byte, error) {
	if len(spec.Hours) == 0 {
		return nil, fmt.Errorf("schedule has no hours")
	}

	intervals := make([]calendarInterval, 0, len(spec.Hours))
	for _, hour := range spec.Hours {
		intervals = append(intervals, calendarInterval{Minute: spec.Minute, Hour: hour})
	}

	entry := launchdJob{
		Label:                 Label(job.Project),
		ProgramArguments:      append([]string{job.Executable}, job.Args...),
		StartCalendarInterval: intervals,
		StandardOutPath:       filepath.Join(job.LogDir, job.Project+".schedule.log"),
		StandardErrorPath:     filepath.Join(job.LogDir, job.Project+".schedule.err.log"),
	}

	data, err := plist.MarshalIndent(entry, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode plist: %w", err)
	}
	return data, nil
}
