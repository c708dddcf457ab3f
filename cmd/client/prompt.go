package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// Line prints label and reads one trimmed line. io.EOF is returned only
// when no input is left at all.
func (p *prompter) Line(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	s, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Required is Line that rejects an empty answer.
func (p *prompter) Required(label string) (string, error) {
	s, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	return s, nil
}

// Default is Line that falls back to def on an empty answer.
func (p *prompter) Default(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	s, err := p.Line(label)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// Amount reads a positive decimal number.
func (p *prompter) Amount(label string) (float64, error) {
	s, err := p.Required(label)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (p *prompter) Confirm(label string) (bool, error) {
	s, err := p.Line(label + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
