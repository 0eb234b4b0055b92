// Package wasmbin implements the binary module codec: the general
// LEB128/name/valtype/limits reading primitives every section needs, plus
// the type section's full decode/encode of rec groups, sub/sub-final
// wrappers, and packed field storage into the flat gctypes.SubType model.
// Reader is shared by isolate's section walker and the type-section codec,
// so those two consumers use one binary reader rather than one each.
package wasmbin

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/bvisness/wasmgc/leb128"
)

// Reader is a cursor-tracking byte reader over a module's section stream,
// with LEB128 and tagged-encoding helpers shared by every section decoder.
type Reader struct {
	r   *bufio.Reader
	cur int
}

// NewReader wraps r for sequential reading starting at offset 0.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// NewReaderFromBytes wraps an already-extracted section body. at is the
// body's starting offset within the enclosing module, used only to make
// error messages report module-relative offsets.
func NewReaderFromBytes(b []byte, at int) *Reader {
	return &Reader{r: bufio.NewReader(bytes.NewReader(b)), cur: at}
}

func (p *Reader) ReadN(thing string, n int) ([]byte, error) {
	at := p.cur
	buf := make([]byte, n)
	nRead, err := io.ReadFull(p.r, buf)
	if err != nil {
		return nil, fmt.Errorf("%s at offset %d: %w", thing, at, err)
	}
	p.cur += nRead
	return buf, nil
}

func (p *Reader) PeekByte(thing string) (byte, error) {
	at := p.cur
	b, err := p.r.Peek(1)
	if err != nil {
		return 0, fmt.Errorf("%s at offset %d: %w", thing, at, err)
	}
	return b[0], nil
}

func (p *Reader) ReadByte(thing string) (byte, error) {
	at := p.cur
	var b [1]byte
	if _, err := io.ReadFull(p.r, b[:]); err != nil {
		return 0, fmt.Errorf("%s at offset %d: %w", thing, at, err)
	}
	p.cur++
	return b[0], nil
}

func (p *Reader) ReadU32(thing string) (uint32, error) {
	v, _, err := p.ReadU64(thing)
	return uint32(v), err
}

func (p *Reader) ReadU64(thing string) (uint64, int, error) {
	at := p.cur
	v, n, err := leb128.DecodeU64(p.r)
	if err != nil {
		return 0, n, fmt.Errorf("%s at offset %d: %w", thing, at, err)
	}
	p.cur += n
	return v, n, nil
}

func (p *Reader) ReadS32(thing string) (int32, error) {
	v, _, err := p.ReadS64(thing)
	return int32(v), err
}

func (p *Reader) ReadS64(thing string) (int64, int, error) {
	at := p.cur
	v, n, err := leb128.DecodeS64(p.r)
	if err != nil {
		return 0, n, fmt.Errorf("%s at offset %d: %w", thing, at, err)
	}
	p.cur += n
	return v, n, nil
}

func (p *Reader) Expect(thing string, want []byte) error {
	at := p.cur
	got, err := p.ReadN(thing, len(want))
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s at offset %d: expected bytes %x but got %x", thing, at, want, got)
	}
	return nil
}

// writer is the dual of Reader: an accumulating byte buffer plus the same
// LEB128 helpers, used by the emitter.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) WriteByte(b byte) { w.buf.WriteByte(b) }
func (w *writer) WriteN(b []byte)  { w.buf.Write(b) }

func (w *writer) WriteU64(v uint64) {
	w.buf.Write(leb128.EncodeU64(v))
}

func (w *writer) WriteS64(v int64) {
	w.buf.Write(leb128.EncodeS64(v))
}

func (w *writer) Bytes() []byte { return w.buf.Bytes() }
