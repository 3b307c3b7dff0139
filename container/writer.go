package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Writer builds a ZIP archive in memory. Entries are always stored
// uncompressed and are laid out in the order they are added.
//
// A Writer is single-use: after Finish returns, further calls fail with
// ErrFinished.
type Writer struct {
	buf      bytes.Buffer
	entries  []Entry
	names    map[string]bool
	finished bool

	// ModTime is recorded in every header. The zero value encodes as
	// 1980-01-01 00:00, the earliest DOS timestamp, which keeps output
	// byte-for-byte reproducible.
	ModTime time.Time
}

// NewWriter returns an empty archive writer.
func NewWriter() *Writer {
	return &Writer{names: make(map[string]bool)}
}

// AddEntry appends a stored entry. Its local header is written immediately so
// the recorded offset is the entry's true position in the final archive.
func (w *Writer) AddEntry(name string, data []byte) error {
	if w.finished {
		return ErrFinished
	}
	if w.names == nil {
		w.names = make(map[string]bool)
	}
	if name == "" {
		return fmt.Errorf("zip entry name must not be empty")
	}
	if w.names[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}
	if len(name) > math.MaxUint16 {
		return fmt.Errorf("zip entry name too long: %d bytes", len(name))
	}
	if uint64(len(data)) > math.MaxUint32 || uint64(w.buf.Len())+uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("zip entry %s exceeds 4 GiB archive limit", name)
	}

	entry := Entry{
		Name:              name,
		Method:            Stored,
		CRC32:             Checksum(data),
		CompressedSize:    uint32(len(data)),
		UncompressedSize:  uint32(len(data)),
		LocalHeaderOffset: uint32(w.buf.Len()),
	}

	dosTime, dosDate := dosDateTime(w.ModTime)

	var hdr [localHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:], sigLocalHeader)
	binary.LittleEndian.PutUint16(hdr[4:], 20) // version needed: 2.0
	binary.LittleEndian.PutUint16(hdr[6:], 0x0800)
	binary.LittleEndian.PutUint16(hdr[8:], uint16(entry.Method))
	binary.LittleEndian.PutUint16(hdr[10:], dosTime)
	binary.LittleEndian.PutUint16(hdr[12:], dosDate)
	binary.LittleEndian.PutUint32(hdr[14:], entry.CRC32)
	binary.LittleEndian.PutUint32(hdr[18:], entry.CompressedSize)
	binary.LittleEndian.PutUint32(hdr[22:], entry.UncompressedSize)
	binary.LittleEndian.PutUint16(hdr[26:], uint16(len(name)))
	binary.LittleEndian.PutUint16(hdr[28:], 0)

	w.buf.Write(hdr[:])
	w.buf.WriteString(name)
	w.buf.Write(data)

	w.names[name] = true
	w.entries = append(w.entries, entry)
	return nil
}

// Len returns the number of entries added so far.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Finish writes the central directory and end record and returns the
// complete archive.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, ErrFinished
	}
	w.finished = true

	if len(w.entries) > math.MaxUint16 {
		return nil, fmt.Errorf("zip archive has %d entries, limit is %d", len(w.entries), math.MaxUint16)
	}

	dosTime, dosDate := dosDateTime(w.ModTime)
	dirOffset := w.buf.Len()

	for _, entry := range w.entries {
		var rec [centralRecordLen]byte
		binary.LittleEndian.PutUint32(rec[0:], sigCentralDirectory)
		binary.LittleEndian.PutUint16(rec[4:], 20) // version made by
		binary.LittleEndian.PutUint16(rec[6:], 20) // version needed
		binary.LittleEndian.PutUint16(rec[8:], 0x0800)
		binary.LittleEndian.PutUint16(rec[10:], uint16(entry.Method))
		binary.LittleEndian.PutUint16(rec[12:], dosTime)
		binary.LittleEndian.PutUint16(rec[14:], dosDate)
		binary.LittleEndian.PutUint32(rec[16:], entry.CRC32)
		binary.LittleEndian.PutUint32(rec[20:], entry.CompressedSize)
		binary.LittleEndian.PutUint32(rec[24:], entry.UncompressedSize)
		binary.LittleEndian.PutUint16(rec[28:], uint16(len(entry.Name)))
		// extra, comment, disk start, internal/external attributes stay zero
		binary.LittleEndian.PutUint32(rec[42:], entry.LocalHeaderOffset)

		w.buf.Write(rec[:])
		w.buf.WriteString(entry.Name)
	}

	dirSize := w.buf.Len() - dirOffset

	var end [endOfDirectoryLen]byte
	binary.LittleEndian.PutUint32(end[0:], sigEndOfDirectory)
	binary.LittleEndian.PutUint16(end[8:], uint16(len(w.entries)))
	binary.LittleEndian.PutUint16(end[10:], uint16(len(w.entries)))
	binary.LittleEndian.PutUint32(end[12:], uint32(dirSize))
	binary.LittleEndian.PutUint32(end[16:], uint32(dirOffset))
	w.buf.Write(end[:])

	return w.buf.Bytes(), nil
}

// dosDateTime encodes t in MS-DOS format. Times before 1980 clamp to the
// DOS epoch.
func dosDateTime(t time.Time) (uint16, uint16) {
	if t.Year() < 1980 {
		return 0, 1<<5 | 1
	}
	dosTime := uint16(t.Hour()<<11 | t.Minute()<<5 | t.Second()/2)
	dosDate := uint16((t.Year()-1980)<<9 | int(t.Month())<<5 | t.Day())
	return dosTime, dosDate
}
