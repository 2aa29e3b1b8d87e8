package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"readsieve/internal/classify"
	"readsieve/internal/dust"
	"readsieve/internal/fastq"
	"readsieve/internal/pattern"
	"readsieve/internal/pipeline"
	"readsieve/internal/stats"
	"readsieve/internal/trie"
)

const version = "1.0.0"

type options struct {
	fragments  string
	input      string
	fastq1     string
	fastq2     string
	outDir     string
	errors     int
	polyLen    int
	minLength  int
	maxN       int
	useDust    bool
	dustK      int
	dustCutoff float64
	threads    int
	tag        bool
	gzipOut    bool
	quiet      bool
}

func rootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:     "readsieve",
		Version: version,
		Short:   "Filter sequencing reads contaminated by known fragments",
		Long: `readsieve screens FASTQ reads against a list of contaminant fragments
(plus synthetic poly-G/poly-C runs) using a mismatch-tolerant Aho-Corasick
scan, and discards reads that are too short, carry too many N bases, match
a fragment, or score as low-complexity.

Single-end reads:
  readsieve -f fragments.dat -o outdir -i reads.fastq

Paired-end reads (a pair is kept only when both mates pass):
  readsieve -f fragments.dat -o outdir -1 reads_1.fastq -2 reads_2.fastq

Input and output files may be gzipped (.gz). Kept reads are written to
<output dir>/<input base>.ok.fastq and a per-stream classification
histogram is printed at the end of the run.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&opts)
		},
	}
	cmd.Flags().StringVarP(&opts.fragments, "fragments", "f", "", "File of contaminant fragments, one per line ('-' for stdin)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "FASTQ file of single-end reads")
	cmd.Flags().StringVarP(&opts.fastq1, "fastq1", "1", "", "FASTQ file of the first paired-end reads")
	cmd.Flags().StringVarP(&opts.fastq2, "fastq2", "2", "", "FASTQ file of the second paired-end reads")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "", "Directory for output files")
	cmd.Flags().IntVarP(&opts.errors, "errors", "e", 0, "Substitutions tolerated per fragment match (0-2)")
	cmd.Flags().IntVarP(&opts.polyLen, "polygc", "p", 13, "Length of the poly-G/poly-C patterns")
	cmd.Flags().IntVarP(&opts.minLength, "length", "l", 50, "Minimum read length")
	cmd.Flags().IntVarP(&opts.maxN, "filter-n", "N", 0, "Maximum number of N bases per read")
	cmd.Flags().BoolVarP(&opts.useDust, "dust", "d", false, "Apply the DUST low-complexity filter")
	cmd.Flags().IntVarP(&opts.dustK, "dust-k", "k", 4, "Window k-mer size for the DUST filter")
	cmd.Flags().Float64VarP(&opts.dustCutoff, "dust-cutoff", "c", 2, "Score cutoff for the DUST filter")
	cmd.Flags().IntVarP(&opts.threads, "threads", "t", 0, "Classification workers (0 = all CPUs)")
	cmd.Flags().BoolVar(&opts.tag, "tag", false, "Annotate kept read ids with the classification name")
	cmd.Flags().BoolVarP(&opts.gzipOut, "gzip", "z", false, "Compress output files")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress the progress counter")
	cmd.MarkFlagRequired("fragments")
	cmd.MarkFlagRequired("output")
	return cmd
}

func run(opts *options) error {
	single := opts.input != ""
	paired := opts.fastq1 != "" || opts.fastq2 != ""
	switch {
	case single && paired:
		return fmt.Errorf("cannot combine -i with -1/-2")
	case !single && !paired:
		return fmt.Errorf("either -i or both -1 and -2 are required")
	case paired && (opts.fastq1 == "" || opts.fastq2 == ""):
		return fmt.Errorf("paired mode needs both -1 and -2")
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	patterns, err := pattern.LoadFile(opts.fragments, opts.polyLen)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Building trie...")
	auto := trie.Build(patterns)

	var scorer *dust.Scorer
	if opts.useDust {
		scorer = &dust.Scorer{K: opts.dustK, Cutoff: opts.dustCutoff}
	}
	cl, err := classify.New(auto, scorer, opts.minLength, opts.maxN, opts.errors)
	if err != nil {
		return err
	}
	pipe := pipeline.New(cl, pipeline.Options{
		Threads:  opts.threads,
		Tag:      opts.tag,
		Progress: !opts.quiet,
	})

	if single {
		return runSingle(pipe, opts)
	}
	return runPaired(pipe, opts)
}

func runSingle(pipe *pipeline.Pipeline, opts *options) error {
	in, err := fastq.Open(opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fastq.Create(outName(opts.outDir, opts.input, opts.gzipOut))
	if err != nil {
		return err
	}

	st := stats.New(opts.input)
	if err := pipe.FilterSingle(in, out, st); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	st.Report(os.Stdout)
	return nil
}

func runPaired(pipe *pipeline.Pipeline, opts *options) error {
	in1, err := fastq.Open(opts.fastq1)
	if err != nil {
		return err
	}
	defer in1.Close()
	in2, err := fastq.Open(opts.fastq2)
	if err != nil {
		return err
	}
	defer in2.Close()

	out1, err := fastq.Create(outName(opts.outDir, opts.fastq1, opts.gzipOut))
	if err != nil {
		return err
	}
	out2, err := fastq.Create(outName(opts.outDir, opts.fastq2, opts.gzipOut))
	if err != nil {
		out1.Close()
		return err
	}

	st1 := stats.NewPaired(opts.fastq1)
	st2 := stats.NewPaired(opts.fastq2)
	if err := pipe.FilterPaired(in1, in2, out1, out2, st1, st2); err != nil {
		out1.Close()
		out2.Close()
		return err
	}
	if err := out1.Close(); err != nil {
		return err
	}
	if err := out2.Close(); err != nil {
		return err
	}
	st1.Report(os.Stdout)
	st2.Report(os.Stdout)
	return nil
}

// outName places the kept-reads file in the output directory, named after
// the input with an .ok.fastq suffix.
func outName(dir, input string, gzipOut bool) string {
	base := strings.TrimSuffix(filepath.Base(input), ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := base + ".ok.fastq"
	if gzipOut {
		name += ".gz"
	}
	return filepath.Join(dir, name)
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
