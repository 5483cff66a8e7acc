package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ehr/interchange/internal/platform/convert"
	"github.com/ehr/interchange/internal/platform/detect"
)

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [files...]",
		Short: "Print the detected format of each file",
		Long:  "Print <file>\\t<format> per file. Standard input is read when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				fmt.Fprintf(out, "-\t%s\n", formatLabel(detect.Detect(convert.Decode(data))))
				return nil
			}

			var failed int
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					failed++
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", filepath.Base(p), formatLabel(detect.Detect(convert.Decode(data))))
			}
			if failed == len(args) {
				return fmt.Errorf("no readable files")
			}
			return nil
		},
	}
}

func formatLabel(f detect.Format) string {
	if f == detect.None {
		return "unknown"
	}
	return string(f)
}
