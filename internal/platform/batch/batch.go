// Package batch converts several files concurrently. A failing file never
// stops the others; its error is kept alongside the successful results.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/sheet"
)

// ErrEmptyFile is reported for files that are empty or whitespace only.
var ErrEmptyFile = errors.New("file is empty")

// File is one named input.
type File struct {
	Name    string
	Content []byte
}

// ConvertFunc converts one file's content, auto-detecting the format when
// known is detect.None.
type ConvertFunc func(content []byte, known detect.Format) ([]sheet.Sheet, detect.Format, error)

// Outcome is the result for one file.
type Outcome struct {
	Name   string
	Format detect.Format
	Sheets []sheet.Sheet
	Err    error
}

// Report holds one outcome per input file, in input order.
type Report struct {
	Outcomes []Outcome
}

// Sheets concatenates the sheets of every successful file in input order.
func (r *Report) Sheets() []sheet.Sheet {
	var out []sheet.Sheet
	for _, o := range r.Outcomes {
		if o.Err == nil {
			out = append(out, o.Sheets...)
		}
	}
	return out
}

// Errors renders each failure as "name: message".
func (r *Report) Errors() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", o.Name, o.Err))
		}
	}
	return out
}

// Succeeded returns the number of files that converted.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed reports whether no file converted.
func (r *Report) Failed() bool {
	return r.Succeeded() == 0
}

// Summary is a one-line error message for a batch in which every file
// failed.
func (r *Report) Summary() string {
	msg := "no valid files found"
	if errs := r.Errors(); len(errs) > 0 {
		msg += ". Errors: " + strings.Join(errs, "; ")
	}
	return msg
}

// Runner converts files with bounded concurrency.
type Runner struct {
	convert     ConvertFunc
	concurrency int
	logger      zerolog.Logger
}

// NewRunner creates a runner. Concurrency below one is treated as one.
func NewRunner(convert ConvertFunc, concurrency int, logger zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{convert: convert, concurrency: concurrency, logger: logger}
}

// Run converts every file. Files not yet started when ctx is cancelled are
// reported with the context error.
func (r *Runner) Run(ctx context.Context, files []File, known detect.Format) *Report {
	report := &Report{Outcomes: make([]Outcome, len(files))}

	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, f := range files {
		g.Go(func() error {
			report.Outcomes[i] = r.one(ctx, f, known)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range report.Outcomes {
		if o.Err != nil {
			r.logger.Warn().Str("file", o.Name).Err(o.Err).Msg("conversion failed")
		}
	}
	return report
}

func (r *Runner) one(ctx context.Context, f File, known detect.Format) (out Outcome) {
	out.Name = f.Name
	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}
	if len(bytes.TrimSpace(f.Content)) == 0 {
		out.Err = ErrEmptyFile
		return out
	}

	defer func() {
		if p := recover(); p != nil {
			out.Sheets = nil
			out.Err = fmt.Errorf("failed to parse: %v", p)
		}
	}()
	out.Sheets, out.Format, out.Err = r.convert(f.Content, known)
	return out
}
