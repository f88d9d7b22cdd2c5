// Package hasher computes block-wise content checksums.
//
// A file's checksum is one seeded 64-bit xxh3 hash per 1 MiB block, taken in
// stream order. The last block covers exactly the bytes present and is never
// padded. The hash is fast and stable across runs and platforms; it is not
// meant to resist deliberate collisions.
package hasher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
)

// BlockSize is the number of content bytes covered by each block hash.
const BlockSize = 1 << 20

// Seed is mixed into every block hash. Changing it changes every digest ever
// produced, so it is part of the manifest format.
const Seed uint64 = 0x6368756d74726565

// hexPerBlock is the rendered width of one block hash.
const hexPerBlock = 16

// ErrRead is the sentinel wrapped by every ReadError.
var ErrRead = errors.New("read failed")

// ErrMalformedDigest is returned by ParseDigest for text that is not a digest.
var ErrMalformedDigest = errors.New("malformed digest")

// ReadError reports a failure to read content while hashing.
// Offset is the number of bytes successfully hashed before the failure.
type ReadError struct {
	Path   string
	Offset uint64
	Err    error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read failed at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("read %s failed at offset %d: %v", e.Path, e.Offset, e.Err)
}

// Unwrap returns the underlying I/O error.
func (e *ReadError) Unwrap() error { return e.Err }

// Is reports ErrRead as a match so callers can test with errors.Is.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// Digest is the sequence of block hashes of one stream.
type Digest []uint64

// String renders the digest as concatenated 16-character uppercase hex values.
// An empty digest renders as the empty string.
func (d Digest) String() string {
	if len(d) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(d) * hexPerBlock)
	for _, h := range d {
		fmt.Fprintf(&sb, "%016X", h)
	}
	return sb.String()
}

// Blocks returns the number of blocks covered by the digest.
func (d Digest) Blocks() int { return len(d) }

// Equal reports whether two digests are identical.
func (d Digest) Equal(o Digest) bool {
	if len(d) != len(o) {
		return false
	}
	for i := range d {
		if d[i] != o[i] {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := ParseDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDigest parses the text form produced by Digest.String.
func ParseDigest(s string) (Digest, error) {
	if len(s)%hexPerBlock != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d", ErrMalformedDigest, len(s), hexPerBlock)
	}
	d := make(Digest, 0, len(s)/hexPerBlock)
	for i := 0; i < len(s); i += hexPerBlock {
		chunk := s[i : i+hexPerBlock]
		if strings.ToUpper(chunk) != chunk {
			return nil, fmt.Errorf("%w: %q is not uppercase hex", ErrMalformedDigest, chunk)
		}
		v, err := strconv.ParseUint(chunk, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrMalformedDigest, chunk, err)
		}
		d = append(d, v)
	}
	return d, nil
}

// HashBlock hashes a single block. Callers never pass more than BlockSize bytes.
func HashBlock(b []byte) uint64 {
	return xxh3.HashSeed(b, Seed)
}

// bufPool recycles block buffers so memory stays at one block per in-flight stream.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, BlockSize)
		return &b
	},
}

// Hash reads r to EOF and returns its digest. onBlock, if non-nil, is called with
// the byte count of every block after it has been hashed.
// Read failures are returned as *ReadError.
func Hash(r io.Reader, onBlock func(n int)) (Digest, error) {
	bp, _ := bufPool.Get().(*[]byte)
	defer bufPool.Put(bp)
	buf := *bp

	var (
		digest Digest
		offset uint64
	)
	for {
		n, err := io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &ReadError{Offset: offset, Err: err}
		}
		if n > 0 {
			digest = append(digest, HashBlock(buf[:n]))
			offset += uint64(n)
			if onBlock != nil {
				onBlock(n)
			}
		}
		if err != nil {
			return digest, nil
		}
	}
}

// HashFile opens path and hashes its content. Open and read failures are
// returned as *ReadError carrying the path.
func HashFile(path string, onBlock func(n int)) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	d, err := Hash(f, onBlock)
	if err != nil {
		var re *ReadError
		if errors.As(err, &re) {
			re.Path = path
		}
		return nil, err
	}
	return d, nil
}
