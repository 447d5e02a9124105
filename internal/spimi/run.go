// Package spimi implements single-pass in-memory index construction:
// memory-bounded block builders flush sorted runs to disk, and a k-way
// merger combines the runs into one globally sorted inverted index.
package spimi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

const (
	runMagic   uint32 = 0x49525253
	runVersion uint32 = 1
)

// Run is an immutable sorted run on disk. Ownership transfers from the block
// builder that wrote it to the merger, which deletes it after a successful
// merge.
type Run struct {
	ID   int
	Path string
}

// RunSequence hands out unique run ids across concurrent block builders.
type RunSequence struct {
	n atomic.Int64
}

// Next returns the next run id.
func (s *RunSequence) Next() int {
	return int(s.n.Add(1))
}

// RunWriter streams (term, postings) records into a zstd-compressed run
// file. Records must be written in ascending term order; postings must be
// normalised.
type RunWriter struct {
	f       *os.File
	enc     *zstd.Encoder
	bw      *bufio.Writer
	run     Run
	scratch []byte
}

// NewRunWriter creates the run file for the given id under dir. The file
// starts with an uncompressed magic/version header followed by the
// compressed record stream.
func NewRunWriter(dir string, id int) (*RunWriter, error) {
	path := filepath.Join(dir, fmt.Sprintf("run_%06d.irr", id))
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Newf(errs.ErrConstruction, "creating run file: %v", err)
	}
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], runMagic)
	binary.LittleEndian.PutUint32(header[4:8], runVersion)
	if _, err := f.Write(header[:]); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errs.Newf(errs.ErrConstruction, "writing run header: %v", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, errs.Newf(errs.ErrConstruction, "creating run compressor: %v", err)
	}
	return &RunWriter{
		f:   f,
		enc: enc,
		bw:  bufio.NewWriter(enc),
		run: Run{ID: id, Path: path},
	}, nil
}

// Write appends one (term, postings) record: term length and bytes, posting
// count, then delta-encoded document ids, all uvarint.
func (w *RunWriter) Write(term string, postings index.PostingList) error {
	w.scratch = w.scratch[:0]
	w.scratch = binary.AppendUvarint(w.scratch, uint64(len(term)))
	w.scratch = append(w.scratch, term...)
	w.scratch = binary.AppendUvarint(w.scratch, uint64(len(postings)))
	prev := uint32(0)
	for i, id := range postings {
		if i == 0 {
			w.scratch = binary.AppendUvarint(w.scratch, uint64(id))
		} else {
			w.scratch = binary.AppendUvarint(w.scratch, uint64(id-prev))
		}
		prev = id
	}
	if _, err := w.bw.Write(w.scratch); err != nil {
		return errs.Newf(errs.ErrConstruction, "writing run record: %v", err)
	}
	return nil
}

// Close flushes and finalises the run file, returning the run handle.
func (w *RunWriter) Close() (Run, error) {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return Run{}, errs.Newf(errs.ErrConstruction, "flushing run: %v", err)
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return Run{}, errs.Newf(errs.ErrConstruction, "closing run compressor: %v", err)
	}
	if err := w.f.Close(); err != nil {
		return Run{}, errs.Newf(errs.ErrConstruction, "closing run file: %v", err)
	}
	return w.run, nil
}

// RunReader reads a run back as a sequential record stream.
type RunReader struct {
	f   *os.File
	dec *zstd.Decoder
	br  *bufio.Reader
	run Run
}

// OpenRun opens a run for sequential reading and validates its header.
func OpenRun(run Run) (*RunReader, error) {
	f, err := os.Open(run.Path)
	if err != nil {
		return nil, errs.Newf(errs.ErrConstruction, "opening run file: %v", err)
	}
	var header [8]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "reading run header: %v", err)
	}
	if magic := binary.LittleEndian.Uint32(header[0:4]); magic != runMagic {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "bad run magic %x in %s", magic, run.Path)
	}
	if version := binary.LittleEndian.Uint32(header[4:8]); version != runVersion {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "unsupported run version %d in %s", version, run.Path)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errs.Newf(errs.ErrCorruptIndex, "creating run decompressor: %v", err)
	}
	return &RunReader{
		f:   f,
		dec: dec,
		br:  bufio.NewReader(dec),
		run: run,
	}, nil
}

// Next returns the next (term, postings) record, or io.EOF when the run is
// exhausted.
func (r *RunReader) Next() (string, index.PostingList, error) {
	termLen, err := binary.ReadUvarint(r.br)
	if err == io.EOF {
		return "", nil, io.EOF
	}
	if err != nil {
		return "", nil, errs.Newf(errs.ErrCorruptIndex, "reading run record: %v", err)
	}
	termBytes := make([]byte, termLen)
	if _, err := io.ReadFull(r.br, termBytes); err != nil {
		return "", nil, errs.Newf(errs.ErrCorruptIndex, "reading run term: %v", err)
	}
	count, err := binary.ReadUvarint(r.br)
	if err != nil {
		return "", nil, errs.Newf(errs.ErrCorruptIndex, "reading posting count: %v", err)
	}
	postings := make(index.PostingList, count)
	prev := uint64(0)
	for i := range postings {
		delta, err := binary.ReadUvarint(r.br)
		if err != nil {
			return "", nil, errs.Newf(errs.ErrCorruptIndex, "reading posting delta: %v", err)
		}
		if i == 0 {
			prev = delta
		} else {
			prev += delta
		}
		postings[i] = uint32(prev)
	}
	return string(termBytes), postings, nil
}

// Close releases the reader. The underlying file is left in place; run
// deletion is the merger's responsibility.
func (r *RunReader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
