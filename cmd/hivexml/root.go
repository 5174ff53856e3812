package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hivexml/hive"
	"github.com/joshuapare/hivexml/xmlexport"
)

var (
	debugOpen  bool
	keepGoing  bool
	outputPath string
	indent     bool
)

var rootCmd = &cobra.Command{
	Use:   "hivexml [-d] [-k] [-o FILE] <hive-file>",
	Short: "Convert a Windows registry hive file to XML",
	Long: `hivexml converts a Windows Registry hive file into a forensically-annotated
XML document on standard output. Every key and value carries byte-run
provenance pointing back into the hive file, and non-printable names or
payloads are base64-encoded losslessly.`,
	Version:       "0.1.0",
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&debugOpen, "debug", "d", false, "Print hive header diagnostics to stderr while opening")
	rootCmd.Flags().BoolVarP(&keepGoing, "keep-going", "k", false, "Skip malformed keys and values instead of aborting")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the XML document to FILE instead of stdout")
	rootCmd.Flags().BoolVar(&indent, "indent", false, "Indent the XML output")
}

func run(path string) error {
	var openFlags hive.OpenFlag
	if debugOpen {
		openFlags |= hive.OpenDebug
	}
	h, err := hive.Open(path, openFlags)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := io.Writer(os.Stdout)
	var outFile *os.File
	if outputPath != "" {
		outFile, err = os.Create(outputPath)
		if err != nil {
			_ = h.Close()
			return err
		}
		out = outFile
	}

	var visitFlags hive.VisitFlag
	if keepGoing {
		visitFlags |= hive.VisitSkipBad
	}

	exportErr := xmlexport.Export(out, h, xmlexport.Options{
		Indent:     indent,
		VisitFlags: visitFlags,
	})

	closeErr := h.Close()
	var outErr error
	if outFile != nil {
		outErr = outFile.Close()
	}

	switch {
	case exportErr != nil:
		return fmt.Errorf("%s: %w", path, exportErr)
	case closeErr != nil:
		return fmt.Errorf("%s: close: %w", path, closeErr)
	case outErr != nil:
		return fmt.Errorf("%s: %w", outputPath, outErr)
	}
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hivexml:", err)
		os.Exit(1)
	}
}
