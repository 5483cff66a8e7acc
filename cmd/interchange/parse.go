package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ehr/interchange/internal/platform/batch"
	"github.com/ehr/interchange/internal/platform/convert"
	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/export"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Convert files to sheets and write them out",
		Long: "Convert one or more interchange files. Sheets from every file that\n" +
			"converts are combined into <name>_parsed.<ext> for a single input or\n" +
			"combined_parsed.<ext> for several. CSV output writes one file per sheet.\n" +
			"The command fails only when no file converts.",
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "json", "Output format: json, yaml, ndjson, csv or parquet")
	cmd.Flags().String("out", ".", "Output directory")
	cmd.Flags().String("as", "auto", "Input format, or auto to detect per file")
	cmd.Flags().Int("concurrency", 0, "Files converted in parallel (default BATCH_CONCURRENCY)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	formatFlag, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	asFlag, _ := cmd.Flags().GetString("as")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	outFormat, err := export.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	known, err := inputFormat(asFlag)
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.BatchConcurrency
	}
	maxBytes, err := cfg.MaxUploadBytes()
	if err != nil {
		return err
	}

	files, failed := readInputs(args, maxBytes)

	converter := convert.NewConverter(nil, logger)
	runner := batch.NewRunner(converter.Func, concurrency, logger)
	report := runner.Run(cmd.Context(), files, known)
	report.Outcomes = append(failed, report.Outcomes...)

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	for _, o := range report.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(stderr, "error: %s: %v\n", o.Name, o.Err)
			continue
		}
		fmt.Fprintf(stdout, "%s: %s, %d sheet(s)\n", o.Name, o.Format, len(o.Sheets))
	}

	if report.Failed() {
		return errors.New(report.Summary())
	}

	paths, err := export.WriteFiles(outDir, export.OutputBase(args), outFormat, report.Sheets())
	if err != nil {
		return err
	}
	for _, p := range paths {
		size := "?"
		if info, err := os.Stat(p); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(stdout, "wrote %s (%s)\n", p, size)
	}
	return nil
}

// inputFormat resolves the --as flag. "auto" and "" mean detect.
func inputFormat(s string) (detect.Format, error) {
	if s == "" || s == "auto" {
		return detect.None, nil
	}
	f, ok := detect.ParseFormat(s)
	if !ok {
		return detect.None, fmt.Errorf("unsupported input format %q", s)
	}
	return f, nil
}

// readInputs loads every path. Unreadable and oversized files become failed
// outcomes instead of aborting the run.
func readInputs(paths []string, maxBytes int64) ([]batch.File, []batch.Outcome) {
	var (
		files  []batch.File
		failed []batch.Outcome
	)
	for _, p := range paths {
		name := filepath.Base(p)
		info, err := os.Stat(p)
		if err != nil {
			failed = append(failed, batch.Outcome{Name: name, Err: err})
			continue
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			failed = append(failed, batch.Outcome{Name: name, Err: fmt.Errorf(
				"file is %s, larger than the %s limit",
				humanize.IBytes(uint64(info.Size())), humanize.IBytes(uint64(maxBytes)))})
			continue
		}
		content, err := os.ReadFile(p)
		if err != nil {
			failed = append(failed, batch.Outcome{Name: name, Err: err})
			continue
		}
		files = append(files, batch.File{Name: name, Content: content})
	}
	return files, failed
}
