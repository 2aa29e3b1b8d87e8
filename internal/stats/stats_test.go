package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"readsieve/internal/classify"
)

func TestUpdate(t *testing.T) {
	st := New("reads.fastq")
	st.Update(classify.Ok)
	st.Update(classify.Ok)
	st.Update(classify.Adapter)
	st.Update(classify.TooShort)

	assert.Equal(t, int64(2), st.Count(classify.Ok))
	assert.Equal(t, int64(1), st.Count(classify.Adapter))
	assert.Equal(t, int64(1), st.Count(classify.TooShort))
	assert.Equal(t, int64(0), st.Count(classify.PolyG))
	assert.Equal(t, int64(4), st.Total())
	assert.Equal(t, int64(2), st.Kept())
}

// An ok mate of a rejected pair counts toward its own histogram but not
// toward the kept total.
func TestUpdatePaired(t *testing.T) {
	st := NewPaired("reads_1.fastq")
	st.UpdatePaired(classify.Ok, true)
	st.UpdatePaired(classify.Ok, false)
	st.UpdatePaired(classify.Adapter, false)

	assert.Equal(t, int64(2), st.Count(classify.Ok))
	assert.Equal(t, int64(1), st.Count(classify.Adapter))
	assert.Equal(t, int64(1), st.KeptCount(classify.Ok))
	assert.Equal(t, int64(0), st.KeptCount(classify.Adapter))
	assert.Equal(t, int64(3), st.Total())
	assert.Equal(t, int64(1), st.Kept())
}

func TestReport(t *testing.T) {
	st := New("reads.fastq")
	st.Update(classify.Ok)
	st.Update(classify.Adapter)

	var buf bytes.Buffer
	st.Report(&buf)
	out := buf.String()

	assert.Contains(t, out, "reads.fastq")
	assert.Contains(t, out, "Total reads: 2")
	assert.Contains(t, out, "Kept reads: 1")
	assert.Contains(t, out, "adapter: 1")
	assert.Contains(t, out, "polyG: 0")
	assert.Contains(t, out, "dust: 0")
}

func TestReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	New("empty.fastq").Report(&buf)
	assert.Contains(t, buf.String(), "Total reads: 0")
}

func TestComma(t *testing.T) {
	tests := []struct {
		value    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, Comma(tc.value))
	}
}
