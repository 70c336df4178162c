package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pdz "github.com/bducraux/pdz-tool"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		outputDir string
		format    string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:          "pdz <file.pdz>",
		Short:        "Parse PDZ spectrometer files into JSON, CSV and embedded images",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" && format != "all" {
				return fmt.Errorf("invalid --output-format %q (want json, csv or all)", format)
			}
			return run(args[0], outputDir, format, verbose)
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "output directory for generated files")
	cmd.Flags().StringVar(&format, "output-format", "all", "output format: json, csv or all")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable verbose output")
	return cmd
}

func run(path, outputDir, format string, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = dev
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Sugar()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	log.Infow("parsing", "file", path, "bytes", len(data))

	file, err := pdz.Parse(data, nil)
	if err != nil {
		if file == nil || len(file.Records) == 0 {
			return err
		}
		// keep whatever decoded before the break
		log.Warnw("partial parse", "error", err, "records", len(file.Records))
	}
	for _, w := range file.Warnings() {
		log.Warnw("record warning", "warning", w)
	}
	log.Infow("parsed", "version", file.Version, "instrument", file.Instrument, "records", len(file.Records))

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if format == "json" || format == "all" {
		if err := writeJSON(file, filepath.Join(outputDir, base+".json")); err != nil {
			return err
		}
		log.Infow("wrote JSON", "file", base+".json")
	}
	if format == "csv" || format == "all" {
		if _, ok := file.Record("XRF Spectrum"); !ok {
			log.Info("no spectrum record, skipping CSV")
		} else {
			name := filepath.Join(outputDir, base+"_xrf_spectrum.csv")
			if err := writeCSV(file, name); err != nil {
				return err
			}
			log.Infow("wrote CSV", "file", filepath.Base(name))
		}
	}

	images := file.Images()
	for i, img := range images {
		name := filepath.Join(outputDir, fmt.Sprintf("%s_%d.jpeg", base, i))
		if err := os.WriteFile(name, img, 0o644); err != nil {
			return err
		}
		log.Infow("wrote image", "file", filepath.Base(name), "bytes", len(img))
	}
	if len(images) == 0 {
		log.Debug("no embedded images found")
	}

	fmt.Printf("File %s processed successfully.\n", path)
	return nil
}

func writeJSON(file *pdz.File, name string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := file.WriteJSON(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func writeCSV(file *pdz.File, name string) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := file.WriteCSV(out, &pdz.CSVOptions{IncludeChannelStartKeV: true}); err != nil {
		_ = out.Close()
		_ = os.Remove(name)
		return err
	}
	return out.Close()
}
