// Package segment persists a built inverted index as one .irx file plus a
// dictionary sidecar, and loads it back for querying. The main file holds
// the postings region, the document-name table, and the universe bitmap; the
// sidecar holds the codec-encoded term dictionary.
package segment

import (
	"encoding/binary"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AshPopcorn/Group5-ASM2/internal/dict"
	"github.com/AshPopcorn/Group5-ASM2/internal/index"
	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
	"github.com/AshPopcorn/Group5-ASM2/pkg/logger"
)

// MagicBytes identifies a valid .irx index file.
const (
	MagicBytes    uint32 = 0x49525831
	FormatVersion uint32 = 1
	HeaderSize    int    = 64
	FooterSize    int    = 32

	// SidecarSuffix is appended to the index path to name the dictionary
	// sidecar.
	SidecarSuffix = ".dict"
)

// skipHintSqrt marks the per-list sqrt(n) skip interval in the header.
const skipHintSqrt uint32 = 0xFFFFFFFF

// Header is the fixed-size header at the start of every index file.
type Header struct {
	Magic          uint32
	Version        uint32
	CodecTag       uint32
	TermCount      uint32
	DocCount       uint32
	SkipHint       uint32
	PostOffset     int64
	PostSize       int64
	DocsOffset     int64
	DocsSize       int64
	UniverseOffset int64
}

// Document pairs a dense document id with its external name.
type Document struct {
	ID   uint32
	Name string
}

// EncodeSkipHint maps a configured skip interval (-1 for sqrt) to its header
// representation.
func EncodeSkipHint(interval int) uint32 {
	if interval < 0 {
		return skipHintSqrt
	}
	return uint32(interval)
}

// DecodeSkipHint is the inverse of EncodeSkipHint.
func DecodeSkipHint(hint uint32) int {
	if hint == skipHintSqrt {
		return -1
	}
	return int(hint)
}

// Writer serialises inverted indexes into .irx files.
type Writer struct {
	dir   string
	codec dict.Codec
	log   *slog.Logger
}

// NewWriter creates a Writer that persists indexes into dir using the given
// dictionary codec.
func NewWriter(dir string, codec dict.Codec) *Writer {
	return &Writer{
		dir:   dir,
		codec: codec,
		log:   logger.WithComponent("segment-writer"),
	}
}

// Write atomically creates <dir>/<name> and its dictionary sidecar. It
// writes to .tmp files first and renames on success, so a failed build never
// publishes a partial index. skipInterval is recorded as a hint for query
// time (-1 for sqrt, 0 for none).
func (w *Writer) Write(name string, ix *index.InvertedIndex, docs []Document, skipInterval int) (string, error) {
	if ix.Len() == 0 {
		return "", errs.New(errs.ErrInvalidInput, "cannot write empty index")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "creating index directory: %v", err)
	}
	finalPath := filepath.Join(w.dir, name)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", errs.Newf(errs.ErrConstruction, "creating temp index file: %v", err)
	}
	defer f.Close()

	if _, err := f.Write(make([]byte, HeaderSize)); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "reserving header: %v", err)
	}

	// Postings region: per term, uvarint count then delta-encoded ids.
	postStart := int64(HeaderSize)
	entries := make([]dict.Entry, 0, ix.Len())
	var record []byte
	written := int64(0)
	for _, tp := range ix.Entries() {
		record = record[:0]
		record = binary.AppendUvarint(record, uint64(len(tp.Postings)))
		prev := uint32(0)
		for i, id := range tp.Postings {
			if i == 0 {
				record = binary.AppendUvarint(record, uint64(id))
			} else {
				record = binary.AppendUvarint(record, uint64(id-prev))
			}
			prev = id
		}
		if _, err := f.Write(record); err != nil {
			return "", errs.Newf(errs.ErrConstruction, "writing postings for %q: %v", tp.Term, err)
		}
		entries = append(entries, dict.Entry{
			Term:    tp.Term,
			Loc:     dict.Location{Offset: written, Length: int64(len(record))},
			DocFreq: len(tp.Postings),
		})
		written += int64(len(record))
	}

	// Doc table and universe are buffered so the footer checksum covers them.
	var tail []byte
	tail = binary.AppendUvarint(tail, uint64(len(docs)))
	for _, d := range docs {
		tail = binary.AppendUvarint(tail, uint64(d.ID))
		tail = binary.AppendUvarint(tail, uint64(len(d.Name)))
		tail = append(tail, d.Name...)
	}
	docsSize := int64(len(tail))

	universeBytes, err := ix.Universe().MarshalBinary()
	if err != nil {
		return "", errs.Newf(errs.ErrConstruction, "marshaling universe bitmap: %v", err)
	}
	tail = append(tail, universeBytes...)

	if _, err := f.Write(tail); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "writing doc table and universe: %v", err)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(tail))
	binary.LittleEndian.PutUint64(footer[8:16], uint64(len(universeBytes)))
	binary.LittleEndian.PutUint64(footer[16:24], uint64(written))
	if _, err := f.Write(footer); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "writing footer: %v", err)
	}

	header := Header{
		Magic:          MagicBytes,
		Version:        FormatVersion,
		CodecTag:       w.codec.Tag(),
		TermCount:      uint32(ix.Len()),
		DocCount:       uint32(len(docs)),
		SkipHint:       EncodeSkipHint(skipInterval),
		PostOffset:     postStart,
		PostSize:       written,
		DocsOffset:     postStart + written,
		DocsSize:       docsSize,
		UniverseOffset: postStart + written + docsSize,
	}
	if _, err := f.WriteAt(header.marshal(), 0); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "updating header: %v", err)
	}
	if err := f.Sync(); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "syncing index file: %v", err)
	}
	if err := f.Close(); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "closing index file: %v", err)
	}

	if err := w.writeSidecar(finalPath+SidecarSuffix, entries); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", errs.Newf(errs.ErrConstruction, "renaming index file: %v", err)
	}
	w.log.Info("index written",
		"path", finalPath,
		"codec", w.codec.Name(),
		"terms", ix.Len(),
		"docs", len(docs),
		"postings_bytes", written,
	)
	return finalPath, nil
}

func (w *Writer) writeSidecar(path string, entries []dict.Entry) error {
	encoded, err := w.codec.Encode(entries)
	if err != nil {
		return errs.Newf(errs.ErrConstruction, "encoding dictionary: %v", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, encoded, 0o644); err != nil {
		return errs.Newf(errs.ErrConstruction, "writing dictionary sidecar: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Newf(errs.ErrConstruction, "renaming dictionary sidecar: %v", err)
	}
	return nil
}

func (h Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.CodecTag)
	binary.LittleEndian.PutUint32(buf[12:16], h.TermCount)
	binary.LittleEndian.PutUint32(buf[16:20], h.DocCount)
	binary.LittleEndian.PutUint32(buf[20:24], h.SkipHint)
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.PostOffset))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.PostSize))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(h.DocsOffset))
	binary.LittleEndian.PutUint64(buf[48:56], uint64(h.DocsSize))
	binary.LittleEndian.PutUint64(buf[56:64], uint64(h.UniverseOffset))
	return buf
}

func unmarshalHeader(buf []byte) Header {
	return Header{
		Magic:          binary.LittleEndian.Uint32(buf[0:4]),
		Version:        binary.LittleEndian.Uint32(buf[4:8]),
		CodecTag:       binary.LittleEndian.Uint32(buf[8:12]),
		TermCount:      binary.LittleEndian.Uint32(buf[12:16]),
		DocCount:       binary.LittleEndian.Uint32(buf[16:20]),
		SkipHint:       binary.LittleEndian.Uint32(buf[20:24]),
		PostOffset:     int64(binary.LittleEndian.Uint64(buf[24:32])),
		PostSize:       int64(binary.LittleEndian.Uint64(buf[32:40])),
		DocsOffset:     int64(binary.LittleEndian.Uint64(buf[40:48])),
		DocsSize:       int64(binary.LittleEndian.Uint64(buf[48:56])),
		UniverseOffset: int64(binary.LittleEndian.Uint64(buf[56:64])),
	}
}
