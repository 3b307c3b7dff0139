package container

import "errors"

// Method identifies how an entry's payload is compressed.
type Method uint16

const (
	// Stored entries hold their payload verbatim.
	Stored Method = 0
	// Deflate entries hold a raw DEFLATE stream.
	Deflate Method = 8
)

// String returns the method name.
func (m Method) String() string {
	switch m {
	case Stored:
		return "stored"
	case Deflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// Entry describes one file in an archive, as recorded in the central
// directory. Entries are immutable once the directory has been parsed.
type Entry struct {
	Name              string
	Method            Method
	CRC32             uint32
	CompressedSize    uint32
	UncompressedSize  uint32
	LocalHeaderOffset uint32
}

// Record signatures and fixed sizes.
const (
	sigLocalHeader      = 0x04034B50
	sigCentralDirectory = 0x02014B50
	sigEndOfDirectory   = 0x06054B50

	localHeaderLen          = 30
	centralRecordLen        = 46
	endOfDirectoryLen       = 22
	maxCommentLen           = 65535
	maxEndOfDirectorySearch = endOfDirectoryLen + maxCommentLen
)

// Errors returned by the reader and writer.
var (
	// ErrNotZip means no End Of Central Directory record was found.
	ErrNotZip = errors.New("not a zip archive")
	// ErrCorrupt means the central directory could not be walked.
	ErrCorrupt = errors.New("corrupt zip central directory")
	// ErrTruncated means an entry's data extends past the end of the archive.
	ErrTruncated = errors.New("truncated zip entry")
	// ErrEntryNotFound means the archive has no entry with the requested name.
	ErrEntryNotFound = errors.New("zip entry not found")
	// ErrUnsupportedMethod means the entry uses a compression method other
	// than stored or deflate.
	ErrUnsupportedMethod = errors.New("unsupported zip compression method")
	// ErrChecksum means an extracted payload does not match its recorded CRC-32.
	ErrChecksum = errors.New("zip entry checksum mismatch")
	// ErrDuplicateEntry means an entry name was added twice to a writer.
	ErrDuplicateEntry = errors.New("duplicate zip entry name")
	// ErrFinished means the writer has already produced its archive.
	ErrFinished = errors.New("zip writer already finished")
)
