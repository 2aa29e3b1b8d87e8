// Package pipeline drives the classifier over fastq streams and emits the
// reads that pass.
package pipeline

import (
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"readsieve/internal/classify"
	"readsieve/internal/fastq"
	"readsieve/internal/stats"
)

// Options tune the run; zero values get sensible defaults.
type Options struct {
	Threads   int  // classification workers, default runtime.NumCPU()
	BatchSize int  // reads per worker batch, default 10000
	Tag       bool // annotate emitted ids with the classification name
	Progress  bool // show a progress counter on stderr
}

const defaultBatchSize = 10000

// Pipeline screens reads from one stream, or two in lock-step for paired
// mode. Reads are classified in worker goroutines; emission order is not
// guaranteed to follow input order.
type Pipeline struct {
	cl   *classify.Classifier
	opts Options
}

// New returns a pipeline over the given classifier.
func New(cl *classify.Classifier, opts Options) *Pipeline {
	if opts.Threads <= 0 {
		opts.Threads = runtime.NumCPU()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Pipeline{cl: cl, opts: opts}
}

var progressTemplate pb.ProgressBarTemplate = `Processed: {{counters . }} {{speed . }}`

func (p *Pipeline) progressBar() *pb.ProgressBar {
	if !p.opts.Progress {
		return nil
	}
	bar := progressTemplate.Start64(0)
	bar.SetWriter(os.Stderr)
	return bar
}

// FilterSingle classifies every read from in, updates st, and writes the
// ok reads to out.
func (p *Pipeline) FilterSingle(in *fastq.Reader, out *fastq.Writer, st *stats.Stats) error {
	batches := make(chan []*fastq.Record, p.opts.Threads)
	results := make(chan *fastq.Record, 1024)
	writeDone := make(chan error, 1)

	go func() {
		var err error
		for rec := range results {
			if err == nil {
				err = out.Write(rec)
			}
		}
		if ferr := out.Flush(); err == nil {
			err = ferr
		}
		writeDone <- err
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				for _, rec := range batch {
					c := p.cl.Classify(rec.Sequence)
					st.Update(c)
					if c != classify.Ok {
						continue
					}
					if p.opts.Tag {
						rec.ID = classify.TagID(rec.ID, c)
					}
					results <- rec
				}
			}
		}()
	}

	bar := p.progressBar()
	var readErr error
	batch := make([]*fastq.Record, 0, p.opts.BatchSize)
	for {
		rec, err := in.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		if bar != nil {
			bar.Increment()
		}
		batch = append(batch, rec)
		if len(batch) == p.opts.BatchSize {
			batches <- batch
			batch = make([]*fastq.Record, 0, p.opts.BatchSize)
		}
	}
	if len(batch) > 0 {
		batches <- batch
	}
	close(batches)
	wg.Wait()
	close(results)
	err := <-writeDone
	if bar != nil {
		bar.Finish()
	}
	if readErr != nil {
		return readErr
	}
	return err
}

type pair struct {
	r1, r2 *fastq.Record
}

// FilterPaired consumes both streams in lock-step and stops at the end of
// the shorter one. Both mates are classified independently; a pair is
// written only when both classify ok, and each mate's histogram records
// whether its pair was kept.
func (p *Pipeline) FilterPaired(in1, in2 *fastq.Reader, out1, out2 *fastq.Writer, st1, st2 *stats.Stats) error {
	batches := make(chan []pair, p.opts.Threads)
	results := make(chan pair, 1024)
	writeDone := make(chan error, 1)

	go func() {
		var err error
		for pr := range results {
			if err == nil {
				err = out1.Write(pr.r1)
			}
			if err == nil {
				err = out2.Write(pr.r2)
			}
		}
		if ferr := out1.Flush(); err == nil {
			err = ferr
		}
		if ferr := out2.Flush(); err == nil {
			err = ferr
		}
		writeDone <- err
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				for _, pr := range batch {
					c1 := p.cl.Classify(pr.r1.Sequence)
					c2 := p.cl.Classify(pr.r2.Sequence)
					kept := c1 == classify.Ok && c2 == classify.Ok
					st1.UpdatePaired(c1, kept)
					st2.UpdatePaired(c2, kept)
					if !kept {
						continue
					}
					if p.opts.Tag {
						pr.r1.ID = classify.TagID(pr.r1.ID, c1)
						pr.r2.ID = classify.TagID(pr.r2.ID, c2)
					}
					results <- pr
				}
			}
		}()
	}

	bar := p.progressBar()
	var readErr error
	batch := make([]pair, 0, p.opts.BatchSize)
	for {
		r1, err := in1.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		r2, err := in2.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		if bar != nil {
			bar.Increment()
		}
		batch = append(batch, pair{r1: r1, r2: r2})
		if len(batch) == p.opts.BatchSize {
			batches <- batch
			batch = make([]pair, 0, p.opts.BatchSize)
		}
	}
	if len(batch) > 0 {
		batches <- batch
	}
	close(batches)
	wg.Wait()
	close(results)
	err := <-writeDone
	if bar != nil {
		bar.Finish()
	}
	if readErr != nil {
		return readErr
	}
	return err
}
