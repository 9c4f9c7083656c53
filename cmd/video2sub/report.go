package main

import (
	"fmt"
	"io"
	"strings"

	"video2sub/internal/logging"
)

type checkState int

const (
	checkInfo checkState = iota
	checkOK
	checkWarn
	checkFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const reportLabelWidth = 18

func (s checkState) label() string {
	switch s {
	case checkOK:
		return "OK"
	case checkWarn:
		return "WARN"
	case checkFail:
		return "FAIL"
	default:
		return "INFO"
	}
}

func (s checkState) color() string {
	switch s {
	case checkOK:
		return ansiGreen
	case checkWarn:
		return ansiYellow
	case checkFail:
		return ansiRed
	default:
		return ansiBlue
	}
}

// doctorReport writes sectioned check output and counts failed lines.
type doctorReport struct {
	out      io.Writer
	colorize bool
	sections int
	failures int
}

func newDoctorReport(out io.Writer) *doctorReport {
	return &doctorReport{out: out, colorize: logging.IsTerminal(out)}
}

func (r *doctorReport) section(title string) {
	if r.sections > 0 {
		fmt.Fprintln(r.out)
	}
	r.sections++
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	fmt.Fprintln(r.out, r.paint(checkInfo, heading))
	fmt.Fprintln(r.out, r.paint(checkInfo, rule))
}

func (r *doctorReport) check(label string, state checkState, detail string) {
	if state == checkFail {
		r.failures++
	}
	line := fmt.Sprintf("  %-*s [%s]", reportLabelWidth, label+":", state.label())
	if detail != "" {
		line += " " + detail
	}
	fmt.Fprintln(r.out, r.paint(state, line))
}

func (r *doctorReport) table(headers []string, rows [][]string) {
	fmt.Fprintln(r.out, renderTable(headers, rows))
}

func (r *doctorReport) paint(state checkState, s string) string {
	if !r.colorize {
		return s
	}
	return state.color() + s + ansiReset
}
