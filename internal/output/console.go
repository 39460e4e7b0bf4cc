package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type ConsoleSink struct {
	writer  io.Writer
	format  string // "text", "json", "ndjson"
	noColor bool
	mu      sync.Mutex
	results []Result // JSON array output and the text summary
}

func NewConsoleSink(w io.Writer, format string, noColor bool) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}
	return &ConsoleSink{
		writer:  w,
		format:  format,
		noColor: noColor,
		results: []Result{},
	}
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) paint(c *color.Color) *color.Color {
	if s.noColor {
		c.DisableColor()
	}
	return c
}

func (s *ConsoleSink) writeLocked(v any) error {
	switch s.format {
	case "json":
		r, ok := v.(Result)
		if !ok {
			// Ignore lifecycle events in JSON console mode.
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case Result:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		r, ok := v.(Result)
		if !ok {
			return nil
		}
		s.results = append(s.results, r)
		if err := s.printResult(r); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) printResult(r Result) error {
	tag := s.paint(color.New(color.FgGreen)).Sprintf("[%s]", r.Status)
	if !r.OK() {
		tag = s.paint(color.New(color.FgRed, color.Bold)).Sprintf("[%s]", r.Status)
	}
	line := fmt.Sprintf("%s %s %s %s %s", tag, r.Repo, r.Action, r.Target, r.statusCodeText())
	if r.Detail != "" {
		line += " - " + r.Detail
	}
	if r.Error != "" {
		line += ": " + r.Error
	}
	_, err := fmt.Fprintln(s.writer, line)
	return err
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.format {
	case "json":
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.results); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "text":
		if len(s.results) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
		renderSummary(s.writer, s.results)
		bold := s.paint(color.New(color.Bold))
		ok, failed := countResults(s.results)
		if _, err := bold.Fprintf(s.writer, "%d succeeded, %d failed\n", ok, failed); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	case "ndjson":
		return nil
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}
