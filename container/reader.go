package container

import (
	"encoding/binary"
	"fmt"

	"github.com/tsawler/docflip/internal/filters"
)

// Reader provides access to the entries of an in-memory ZIP archive.
type Reader struct {
	data    []byte
	entries []Entry
	index   map[string]int
}

// Open parses the central directory of a ZIP archive held in data.
// The buffer is retained and must not be modified while the Reader is in use.
func Open(data []byte) (*Reader, error) {
	eocd, err := findEndOfDirectory(data)
	if err != nil {
		return nil, err
	}

	count := int(binary.LittleEndian.Uint16(data[eocd+10:]))
	dirSize := int64(binary.LittleEndian.Uint32(data[eocd+12:]))
	dirOffset := int64(binary.LittleEndian.Uint32(data[eocd+16:]))

	if dirOffset+dirSize > int64(eocd) {
		return nil, fmt.Errorf("%w: directory at %d+%d overlaps end record at %d", ErrCorrupt, dirOffset, dirSize, eocd)
	}

	r := &Reader{
		data:    data,
		entries: make([]Entry, 0, count),
		index:   make(map[string]int, count),
	}

	pos := int(dirOffset)
	for i := 0; i < count; i++ {
		entry, next, err := parseCentralRecord(data, pos)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		// First occurrence wins if an archive repeats a name.
		if _, dup := r.index[entry.Name]; !dup {
			r.index[entry.Name] = len(r.entries)
			r.entries = append(r.entries, entry)
		}
		pos = next
	}

	return r, nil
}

// findEndOfDirectory scans backward for the EOCD signature. The search window
// covers the fixed record plus the largest possible archive comment.
func findEndOfDirectory(data []byte) (int, error) {
	if len(data) < endOfDirectoryLen {
		return 0, ErrNotZip
	}

	stop := len(data) - maxEndOfDirectorySearch
	if stop < 0 {
		stop = 0
	}

	for i := len(data) - endOfDirectoryLen; i >= stop; i-- {
		if binary.LittleEndian.Uint32(data[i:]) == sigEndOfDirectory {
			return i, nil
		}
	}

	return 0, ErrNotZip
}

// parseCentralRecord reads one central directory record at pos and returns
// the entry and the offset of the following record.
func parseCentralRecord(data []byte, pos int) (Entry, int, error) {
	if pos < 0 || pos+centralRecordLen > len(data) {
		return Entry{}, 0, fmt.Errorf("%w: record at %d out of bounds", ErrCorrupt, pos)
	}

	rec := data[pos:]
	if binary.LittleEndian.Uint32(rec) != sigCentralDirectory {
		return Entry{}, 0, fmt.Errorf("%w: bad signature at %d", ErrCorrupt, pos)
	}

	nameLen := int(binary.LittleEndian.Uint16(rec[28:]))
	extraLen := int(binary.LittleEndian.Uint16(rec[30:]))
	commentLen := int(binary.LittleEndian.Uint16(rec[32:]))

	next := pos + centralRecordLen + nameLen + extraLen + commentLen
	if next > len(data) {
		return Entry{}, 0, fmt.Errorf("%w: record at %d overruns archive", ErrCorrupt, pos)
	}

	entry := Entry{
		Name:              string(rec[centralRecordLen : centralRecordLen+nameLen]),
		Method:            Method(binary.LittleEndian.Uint16(rec[10:])),
		CRC32:             binary.LittleEndian.Uint32(rec[16:]),
		CompressedSize:    binary.LittleEndian.Uint32(rec[20:]),
		UncompressedSize:  binary.LittleEndian.Uint32(rec[24:]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(rec[42:]),
	}

	return entry, next, nil
}

// Entries returns the archive entries in central directory order.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the entry with the given name.
func (r *Reader) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Has reports whether the archive contains an entry with the given name.
func (r *Reader) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Read returns the uncompressed payload of the named entry.
//
// It returns ErrEntryNotFound when the entry does not exist and
// ErrUnsupportedMethod when the entry uses neither stored nor deflate
// compression; both are conditions a caller may choose to treat as absence.
func (r *Reader) Read(name string) ([]byte, error) {
	entry, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	if entry.Method != Stored && entry.Method != Deflate {
		return nil, fmt.Errorf("%w: %s uses method %d", ErrUnsupportedMethod, name, uint16(entry.Method))
	}

	payload, err := r.payload(entry)
	if err != nil {
		return nil, err
	}

	var out []byte
	switch entry.Method {
	case Stored:
		out = make([]byte, len(payload))
		copy(out, payload)
	case Deflate:
		out, err = filters.RawInflate(payload, int64(entry.UncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTruncated, name, err)
		}
	}

	if sum := Checksum(out); sum != entry.CRC32 {
		return nil, fmt.Errorf("%w: %s: got %08x, want %08x", ErrChecksum, name, sum, entry.CRC32)
	}

	return out, nil
}

// payload locates the compressed bytes of an entry. The name and extra field
// lengths are taken from the local header because they may differ from the
// central directory's copy.
func (r *Reader) payload(entry Entry) ([]byte, error) {
	off := int64(entry.LocalHeaderOffset)
	if off+localHeaderLen > int64(len(r.data)) {
		return nil, fmt.Errorf("%w: local header of %s at %d", ErrTruncated, entry.Name, off)
	}

	hdr := r.data[off:]
	if binary.LittleEndian.Uint32(hdr) != sigLocalHeader {
		return nil, fmt.Errorf("%w: bad local header signature for %s", ErrCorrupt, entry.Name)
	}

	nameLen := int64(binary.LittleEndian.Uint16(hdr[26:]))
	extraLen := int64(binary.LittleEndian.Uint16(hdr[28:]))

	start := off + localHeaderLen + nameLen + extraLen
	end := start + int64(entry.CompressedSize)
	if end > int64(len(r.data)) {
		return nil, fmt.Errorf("%w: %s needs %d bytes past offset %d", ErrTruncated, entry.Name, entry.CompressedSize, start)
	}

	return r.data[start:end], nil
}
