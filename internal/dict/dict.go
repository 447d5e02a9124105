// Package dict implements the three interchangeable dictionary codecs that
// encode the term -> posting-list-location mapping of a persisted index:
// blocked, front-coded, and dictionary-as-string. Every encoding is
// self-describing: a magic/version/variant header lets a reader select the
// matching decoder and reject bytes produced by a different variant.
package dict

import (
	"encoding/binary"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

const (
	dictMagic   uint32 = 0x44494354
	dictVersion uint32 = 1
	headerSize         = 12

	// TagBlocked identifies the blocked codec.
	TagBlocked uint32 = 1
	// TagFrontCoded identifies the front-coded codec.
	TagFrontCoded uint32 = 2
	// TagDictString identifies the dictionary-as-string codec.
	TagDictString uint32 = 3
)

// Location is where a term's posting list lives inside the postings region.
type Location struct {
	Offset int64
	Length int64
}

// Entry is one dictionary record produced at serialization time: the term,
// its posting-list location, and its document frequency. Entries handed to
// Encode must be sorted lexicographically by term.
type Entry struct {
	Term    string
	Loc     Location
	DocFreq int
}

// Resolver is the lookup capability a decoded dictionary provides.
type Resolver interface {
	// Resolve returns the posting-list location for a term.
	Resolve(term string) (Location, bool)
	// Len is the number of terms in the dictionary.
	Len() int
	// Terms reconstructs every term in sorted order.
	Terms() []string
}

// Codec encodes and decodes a sorted dictionary.
type Codec interface {
	Name() string
	Tag() uint32
	Encode(entries []Entry) ([]byte, error)
	Decode(data []byte) (Resolver, error)
}

// ByName returns a codec by its config name, using the given group size for
// the grouped variants.
func ByName(name string, groupSize int) (Codec, bool) {
	switch name {
	case "blocked":
		return NewBlocked(groupSize), true
	case "frontcoded":
		return NewFrontCoded(groupSize), true
	case "dictstring":
		return NewDictString(), true
	default:
		return nil, false
	}
}

// ByTag returns the codec matching a persisted variant tag. The grouped
// variants recover their group size from the encoded bytes, so the default
// group size here is only a placeholder.
func ByTag(tag uint32) (Codec, bool) {
	switch tag {
	case TagBlocked:
		return NewBlocked(1), true
	case TagFrontCoded:
		return NewFrontCoded(1), true
	case TagDictString:
		return NewDictString(), true
	default:
		return nil, false
	}
}

// putHeader appends the self-describing dictionary header.
func putHeader(buf []byte, tag uint32) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, dictMagic)
	buf = binary.LittleEndian.AppendUint32(buf, dictVersion)
	buf = binary.LittleEndian.AppendUint32(buf, tag)
	return buf
}

// checkHeader validates magic, version, and variant tag, returning the
// payload after the header.
func checkHeader(data []byte, wantTag uint32) ([]byte, error) {
	if len(data) < headerSize {
		return nil, errs.New(errs.ErrCorruptIndex, "dictionary shorter than header")
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != dictMagic {
		return nil, errs.Newf(errs.ErrCorruptIndex, "bad dictionary magic %x", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != dictVersion {
		return nil, errs.Newf(errs.ErrCorruptIndex, "unsupported dictionary version %d", version)
	}
	if tag := binary.LittleEndian.Uint32(data[8:12]); tag != wantTag {
		return nil, errs.Newf(errs.ErrCodecMismatch, "dictionary has variant tag %d, decoder expects %d", tag, wantTag)
	}
	return data[headerSize:], nil
}

// Tag reads the variant tag out of encoded dictionary bytes so a caller can
// pick the matching decoder.
func Tag(data []byte) (uint32, error) {
	if len(data) < headerSize {
		return 0, errs.New(errs.ErrCorruptIndex, "dictionary shorter than header")
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != dictMagic {
		return 0, errs.Newf(errs.ErrCorruptIndex, "bad dictionary magic %x", magic)
	}
	return binary.LittleEndian.Uint32(data[8:12]), nil
}

// commonPrefixLen returns the length of the longest shared prefix of a and b.
func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// uvarint reads one uvarint from data at pos, returning the value and the
// position after it. A negative position signals truncated input.
func uvarint(data []byte, pos int) (uint64, int) {
	if pos < 0 || pos >= len(data) {
		return 0, -1
	}
	v, n := binary.Uvarint(data[pos:])
	if n <= 0 {
		return 0, -1
	}
	return v, pos + n
}
