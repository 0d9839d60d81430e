package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seqkat/lncat/internal/classify"
	"github.com/seqkat/lncat/internal/duckdb"
	"github.com/seqkat/lncat/internal/genepred"
	"github.com/seqkat/lncat/internal/output"
)

func newClassifyCmd() *cobra.Command {
	var (
		refPath       string
		outDir        string
		resultsDB     string
		antisenseOnly bool
		knownOnly     bool
		rescue        bool
		ignoreFormat  bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "classify --ref <annotation.genePred> <sample.genePred> [...]",
		Short: "Classify candidate transcript tables against a reference annotation",
		Long: `Classify one or more candidate transcript tables (gene-prediction format,
one file per sample) against a reference annotation. Each sample is an
independent unit of work with its own output files; units run concurrently
up to the configured worker count.`,
		Example: `  lncat classify --ref gencode.genePred sampleA.genePred sampleB.genePred
  lncat classify --ref gencode.genePred --overlap-pct 50 --linc-window 5000 sample.genePred
  lncat classify --ref known_ncrna.genePred --known sample.genePred`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if refPath == "" {
				return fmt.Errorf("--ref annotation table is required")
			}
			return runClassify(classifyOptions{
				refPath:       refPath,
				candidates:    args,
				outDir:        outDir,
				resultsDB:     resultsDB,
				antisenseOnly: antisenseOnly,
				knownOnly:     knownOnly,
				rescue:        rescue,
				strict:        !ignoreFormat,
				verbose:       verbose,
			})
		},
	}

	cmd.Flags().StringVar(&refPath, "ref", "", "Reference annotation gene-prediction table (required)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Directory for per-sample output files")
	cmd.Flags().StringVar(&resultsDB, "results-db", "", "Optional DuckDB database to append classification results to")
	cmd.Flags().Int64("min-length", 200, "Minimum transcript length")
	cmd.Flags().Int64("max-length", 0, "Maximum transcript length (0 = unlimited)")
	cmd.Flags().Int("min-exons", 1, "Minimum exon count")
	cmd.Flags().Float64("overlap-pct", 0, "Exonic overlap percentage threshold (0 = any overlap counts)")
	cmd.Flags().Int64("linc-window", 0, "LincRNA proximity window in bases (0 = disabled)")
	cmd.Flags().IntP("workers", "w", 0, "Maximum concurrent units (0 = number of CPUs)")
	cmd.Flags().BoolVar(&antisenseOnly, "antisense-only", false, "Report antisense exonic overlaps only")
	cmd.Flags().BoolVar(&knownOnly, "known", false, "Known-ncRNA comparison: exact exonic matching only")
	cmd.Flags().BoolVar(&rescue, "rescue", false, "Keep every assigned category, skip the class-code consistency check")
	cmd.Flags().BoolVar(&ignoreFormat, "ignore-format-errors", false, "Skip records failing format validation instead of aborting")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	for _, name := range []string{"min-length", "max-length", "min-exons", "overlap-pct", "linc-window", "workers"} {
		_ = viper.BindPFlag("classify."+name, cmd.Flags().Lookup(name))
	}

	return cmd
}

type classifyOptions struct {
	refPath       string
	candidates    []string
	outDir        string
	resultsDB     string
	antisenseOnly bool
	knownOnly     bool
	rescue        bool
	strict        bool
	verbose       bool
}

func runClassify(opts classifyOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	cfg := classify.Config{
		MinLength:     viper.GetInt64("classify.min-length"),
		MaxLength:     viper.GetInt64("classify.max-length"),
		MinExons:      viper.GetInt("classify.min-exons"),
		OverlapPct:    viper.GetFloat64("classify.overlap-pct"),
		LincWindow:    viper.GetInt64("classify.linc-window"),
		AntisenseOnly: opts.antisenseOnly,
		KnownOnly:     opts.knownOnly,
		Rescue:        opts.rescue,
	}

	ref, err := genepred.LoadIndex(opts.refPath, opts.strict)
	if err != nil {
		return fmt.Errorf("load reference annotation: %w", err)
	}
	logger.Info("reference annotation loaded",
		zap.String("path", opts.refPath),
		zap.Int("models", ref.Len()),
		zap.Int("chromosomes", len(ref.Chromosomes())))

	var store *duckdb.Store
	if opts.resultsDB != "" {
		store, err = duckdb.Open(opts.resultsDB)
		if err != nil {
			return fmt.Errorf("open results database: %w", err)
		}
		defer store.Close()
	}

	engine := classify.NewEngine(ref, cfg)
	engine.SetLogger(logger)

	dispatcher := classify.NewDispatcher(engine, opts.strict)
	dispatcher.SetLogger(logger)

	units := make([]classify.WorkUnit, len(opts.candidates))
	for i, path := range opts.candidates {
		units[i] = classify.WorkUnit{Sample: sampleName(path), CandidatePath: path}
	}

	workers := viper.GetInt("classify.workers")
	failed := 0
	err = dispatcher.Run(units, workers, func(r classify.WorkResult) error {
		if r.Err != nil {
			failed++
			logger.Error("unit failed",
				zap.String("sample", r.Unit.Sample),
				zap.Error(r.Err))
			return nil
		}

		if _, _, err := output.WriteUnitFiles(opts.outDir, r.Result); err != nil {
			return fmt.Errorf("write output for %s: %w", r.Unit.Sample, err)
		}
		if err := output.WriteSummary(os.Stdout, r.Result.Summary); err != nil {
			return fmt.Errorf("write summary for %s: %w", r.Unit.Sample, err)
		}
		if store != nil {
			if err := store.WriteResult(r.Result); err != nil {
				return fmt.Errorf("store results for %s: %w", r.Unit.Sample, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if failed == len(units) {
		return fmt.Errorf("all %d classification units failed", failed)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d units failed; see log for details\n", failed, len(units))
	}
	return nil
}

// sampleName derives the sample name from a candidate table path.
func sampleName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}
