package dict

import (
	"encoding/binary"
	"sort"

	errs "github.com/AshPopcorn/Group5-ASM2/pkg/errors"
)

// Blocked stores every term's complete bytes but groups k consecutive terms
// and keeps only the first term of each group in the search directory.
// Compression comes from amortising per-term bookkeeping across the group,
// not from omitting characters.
type Blocked struct {
	groupSize int
}

// NewBlocked creates a blocked codec with k terms per group.
func NewBlocked(groupSize int) *Blocked {
	if groupSize < 1 {
		groupSize = 1
	}
	return &Blocked{groupSize: groupSize}
}

func (c *Blocked) Name() string { return "blocked" }

func (c *Blocked) Tag() uint32 { return TagBlocked }

// Encode lays out a group directory (first term and entry-blob offset per
// group) followed by the entry blob, where each entry carries its full term
// bytes, document frequency, and posting-list location.
func (c *Blocked) Encode(entries []Entry) ([]byte, error) {
	var blob []byte
	var dir []byte
	groups := 0
	for i, e := range entries {
		if i%c.groupSize == 0 {
			dir = binary.AppendUvarint(dir, uint64(len(blob)))
			dir = binary.AppendUvarint(dir, uint64(len(e.Term)))
			dir = append(dir, e.Term...)
			groups++
		}
		blob = binary.AppendUvarint(blob, uint64(len(e.Term)))
		blob = append(blob, e.Term...)
		blob = appendEntryMeta(blob, e)
	}

	out := putHeader(nil, TagBlocked)
	out = binary.LittleEndian.AppendUint32(out, uint32(c.groupSize))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(entries)))
	out = binary.LittleEndian.AppendUint32(out, uint32(groups))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(dir)))
	out = append(out, dir...)
	out = append(out, blob...)
	return out, nil
}

// Decode parses the group directory and keeps the entry blob for lazy
// within-group scanning.
func (c *Blocked) Decode(data []byte) (Resolver, error) {
	payload, err := checkHeader(data, TagBlocked)
	if err != nil {
		return nil, err
	}
	if len(payload) < 16 {
		return nil, errs.New(errs.ErrCorruptIndex, "blocked dictionary truncated")
	}
	groupSize := int(binary.LittleEndian.Uint32(payload[0:4]))
	count := int(binary.LittleEndian.Uint32(payload[4:8]))
	groupCount := int(binary.LittleEndian.Uint32(payload[8:12]))
	dirLen := int(binary.LittleEndian.Uint32(payload[12:16]))
	if groupSize < 1 || dirLen < 0 || 16+dirLen > len(payload) {
		return nil, errs.New(errs.ErrCorruptIndex, "blocked dictionary has invalid directory")
	}
	dir := payload[16 : 16+dirLen]
	blob := payload[16+dirLen:]

	groups := make([]blockedGroup, 0, groupCount)
	pos := 0
	for g := 0; g < groupCount; g++ {
		start, pos2 := uvarint(dir, pos)
		termLen, pos3 := uvarint(dir, pos2)
		if pos3 < 0 || pos3+int(termLen) > len(dir) {
			return nil, errs.New(errs.ErrCorruptIndex, "blocked group directory truncated")
		}
		groups = append(groups, blockedGroup{
			first: string(dir[pos3 : pos3+int(termLen)]),
			start: int(start),
		})
		pos = pos3 + int(termLen)
	}
	return &blockedResolver{
		groupSize: groupSize,
		count:     count,
		groups:    groups,
		blob:      blob,
	}, nil
}

type blockedGroup struct {
	first string
	start int
}

type blockedResolver struct {
	groupSize int
	count     int
	groups    []blockedGroup
	blob      []byte
}

func (r *blockedResolver) Len() int { return r.count }

// Resolve binary-searches the group directory for the candidate group, then
// linearly scans at most groupSize full terms inside it.
func (r *blockedResolver) Resolve(term string) (Location, bool) {
	g := sort.Search(len(r.groups), func(i int) bool {
		return r.groups[i].first > term
	}) - 1
	if g < 0 {
		return Location{}, false
	}
	pos := r.groups[g].start
	for i := 0; i < r.groupSize && pos >= 0 && pos < len(r.blob); i++ {
		var candidate string
		candidate, pos = readBlockedTerm(r.blob, pos)
		if pos < 0 {
			return Location{}, false
		}
		var loc Location
		loc, _, pos = readEntryMeta(r.blob, pos)
		if pos < 0 {
			return Location{}, false
		}
		if candidate == term {
			return loc, true
		}
		if candidate > term {
			return Location{}, false
		}
	}
	return Location{}, false
}

func (r *blockedResolver) Terms() []string {
	terms := make([]string, 0, r.count)
	pos := 0
	for len(terms) < r.count && pos >= 0 && pos < len(r.blob) {
		var term string
		term, pos = readBlockedTerm(r.blob, pos)
		if pos < 0 {
			break
		}
		_, _, pos = readEntryMeta(r.blob, pos)
		if pos < 0 {
			break
		}
		terms = append(terms, term)
	}
	return terms
}

func readBlockedTerm(blob []byte, pos int) (string, int) {
	termLen, pos := uvarint(blob, pos)
	if pos < 0 || pos+int(termLen) > len(blob) {
		return "", -1
	}
	return string(blob[pos : pos+int(termLen)]), pos + int(termLen)
}

// appendEntryMeta appends docFreq, offset, and length for one entry.
func appendEntryMeta(buf []byte, e Entry) []byte {
	buf = binary.AppendUvarint(buf, uint64(e.DocFreq))
	buf = binary.AppendUvarint(buf, uint64(e.Loc.Offset))
	buf = binary.AppendUvarint(buf, uint64(e.Loc.Length))
	return buf
}

// readEntryMeta reads the docFreq/offset/length triple written by
// appendEntryMeta.
func readEntryMeta(blob []byte, pos int) (Location, int, int) {
	docFreq, pos := uvarint(blob, pos)
	if pos < 0 {
		return Location{}, 0, -1
	}
	offset, pos := uvarint(blob, pos)
	if pos < 0 {
		return Location{}, 0, -1
	}
	length, pos := uvarint(blob, pos)
	if pos < 0 {
		return Location{}, 0, -1
	}
	return Location{Offset: int64(offset), Length: int64(length)}, int(docFreq), pos
}
