package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readsieve/internal/fastq"
)

func TestOutName(t *testing.T) {
	tests := []struct {
		name    string
		dir     string
		input   string
		gzipOut bool
		want    string
	}{
		{
			name:  "PlainInput",
			dir:   "out",
			input: "reads.fastq",
			want:  filepath.Join("out", "reads.ok.fastq"),
		},
		{
			name:  "GzippedInput",
			dir:   "out",
			input: "/data/reads.fastq.gz",
			want:  filepath.Join("out", "reads.ok.fastq"),
		},
		{
			name:    "GzippedOutput",
			dir:     "out",
			input:   "reads.fastq",
			gzipOut: true,
			want:    filepath.Join("out", "reads.ok.fastq.gz"),
		},
		{
			name:  "NoExtension",
			dir:   "out",
			input: "reads",
			want:  filepath.Join("out", "reads.ok.fastq"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, outName(tc.dir, tc.input, tc.gzipOut))
		})
	}
}

func TestRunSingleEnd(t *testing.T) {
	dir := t.TempDir()
	fragments := filepath.Join(dir, "fragments.dat")
	reads := filepath.Join(dir, "reads.fastq")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(fragments, []byte("TTTT\n"), 0o644))
	require.NoError(t, os.WriteFile(reads, []byte(
		"@keep\nACGTACGTAC\n+\nIIIIIIIIII\n"+
			"@drop\nAATTTTCCGG\n+\nIIIIIIIIII\n"), 0o644))

	cmd := rootCommand()
	cmd.SetArgs([]string{"-f", fragments, "-i", reads, "-o", outDir, "-l", "4", "-q"})
	require.NoError(t, cmd.Execute())

	r, err := fastq.Open(filepath.Join(outDir, "reads.ok.fastq"))
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "@keep", rec.ID)
	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRunPairedEnd(t *testing.T) {
	dir := t.TempDir()
	fragments := filepath.Join(dir, "fragments.dat")
	reads1 := filepath.Join(dir, "reads_1.fastq")
	reads2 := filepath.Join(dir, "reads_2.fastq")
	outDir := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(fragments, []byte("TTTT\n"), 0o644))
	require.NoError(t, os.WriteFile(reads1, []byte(
		"@p1/1\nACGTACGTAC\n+\nIIIIIIIIII\n"+
			"@p2/1\nACGTACGTAC\n+\nIIIIIIIIII\n"), 0o644))
	require.NoError(t, os.WriteFile(reads2, []byte(
		"@p1/2\nCAGGATTACA\n+\nIIIIIIIIII\n"+
			"@p2/2\nAATTTTCCGG\n+\nIIIIIIIIII\n"), 0o644))

	cmd := rootCommand()
	cmd.SetArgs([]string{"-f", fragments, "-1", reads1, "-2", reads2, "-o", outDir, "-l", "4", "-q"})
	require.NoError(t, cmd.Execute())

	for _, out := range []string{"reads_1.ok.fastq", "reads_2.ok.fastq"} {
		r, err := fastq.Open(filepath.Join(outDir, out))
		require.NoError(t, err)
		rec, err := r.Next()
		require.NoError(t, err)
		assert.Contains(t, rec.ID, "@p1")
		_, err = r.Next()
		assert.Equal(t, io.EOF, err)
		r.Close()
	}
}

func TestRunConfigErrors(t *testing.T) {
	dir := t.TempDir()
	fragments := filepath.Join(dir, "fragments.dat")
	reads := filepath.Join(dir, "reads.fastq")
	empty := filepath.Join(dir, "empty.dat")
	require.NoError(t, os.WriteFile(fragments, []byte("TTTT\n"), 0o644))
	require.NoError(t, os.WriteFile(reads, []byte("@r\nACGT\n+\nIIII\n"), 0o644))
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{
			name: "NoInput",
			args: []string{"-f", fragments, "-o", dir},
		},
		{
			name: "BothInputModes",
			args: []string{"-f", fragments, "-i", reads, "-1", reads, "-2", reads, "-o", dir},
		},
		{
			name: "MissingMate",
			args: []string{"-f", fragments, "-1", reads, "-o", dir},
		},
		{
			name: "BadErrorBudget",
			args: []string{"-f", fragments, "-i", reads, "-o", dir, "-e", "3"},
		},
		{
			name: "EmptyPatternFile",
			args: []string{"-f", empty, "-i", reads, "-o", dir},
		},
		{
			name: "MissingPatternFile",
			args: []string{"-f", filepath.Join(dir, "nope.dat"), "-i", reads, "-o", dir},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := rootCommand()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(append(tc.args, "-q"))
			assert.Error(t, cmd.Execute())
		})
	}
}
