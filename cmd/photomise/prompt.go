package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"photomise/internal/store"
)

// prompter reads interactive answers. Commands share one instance so a
// piped stdin behaves predictably.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter() *prompter {
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// lineDefault returns fallback when the answer is blank.
func (p *prompter) lineDefault(label, fallback string) (string, error) {
	answer, err := p.line(fmt.Sprintf("%s [%s]: ", label, fallback))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}

func (p *prompter) yesNo(label string, fallback bool) (bool, error) {
	hint := "y/N"
	if fallback {
		hint = "Y/n"
	}
	answer, err := p.line(fmt.Sprintf("%s (%s): ", label, hint))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return fallback, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// number prompts for a numeric choice. Blank aborts with ok=false; the
// caller validates the range.
func (p *prompter) number(label string) (int, bool, error) {
	answer, err := p.line(label)
	if err != nil {
		return 0, false, err
	}
	if answer == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, false, fmt.Errorf("expected a number, got %q", answer)
	}
	return n, true, nil
}

// password reads without echo when stdin is a terminal.
func (p *prompter) password(label string) (string, error) {
	fmt.Fprint(p.out, label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	return p.line("")
}

// cliResolver answers ingestion decisions from the terminal.
type cliResolver struct {
	p *prompter
}

func (r *cliResolver) CaptureTime(path string) (time.Time, bool, error) {
	answer, err := r.p.line(fmt.Sprintf("%s has no capture time. Enter one (YYYY-MM-DD HH:MM, blank to skip): ", path))
	if err != nil {
		return time.Time{}, false, err
	}
	if answer == "" {
		return time.Time{}, false, nil
	}
	taken, err := time.Parse("2006-01-02 15:04", answer)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse capture time: %w", err)
	}
	return taken.UTC(), true, nil
}

func (r *cliResolver) Coordinates(path string) (float64, float64, bool, error) {
	answer, err := r.p.line(fmt.Sprintf("%s has no GPS data. Enter coordinates (lat,lon, blank to skip): ", path))
	if err != nil {
		return 0, 0, false, err
	}
	if answer == "" {
		return 0, 0, false, nil
	}
	parts := strings.SplitN(answer, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("coordinates must be \"lat,lon\", got %q", answer)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false, fmt.Errorf("parse longitude: %w", err)
	}
	return lat, lon, true, nil
}

func (r *cliResolver) LocationName(lat, lon float64) (string, bool, error) {
	answer, err := r.p.line(fmt.Sprintf("New location at %s. Name it (blank to skip): ", formatCoords(lat, lon)))
	if err != nil {
		return "", false, err
	}
	if answer == "" {
		return "", false, nil
	}
	return answer, true, nil
}

func (r *cliResolver) EventName(suggested string, anchor time.Time, location string) (string, bool, error) {
	fmt.Fprintf(r.p.out, "New event at %s on %s.\n", location, formatDate(anchor))
	answer, err := r.p.lineDefault("Event name", suggested)
	if err != nil {
		return "", false, err
	}
	return answer, true, nil
}

func (r *cliResolver) KeepEvent(path string, events []*store.Event) (int, error) {
	fmt.Fprintf(r.p.out, "%s appears in %d events:\n", path, len(events))
	for i, ev := range events {
		fmt.Fprintf(r.p.out, "  %d. %s (%s, %s)\n", i+1, ev.Name, ev.Location, formatDate(ev.Date))
	}
	keep, ok, err := r.p.number("Keep it in which event? ")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return keep, nil
}
