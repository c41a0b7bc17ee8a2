package filter

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/robert-malhotra/go-serialbox/internal/binary"
)

// Frame layout (little-endian):
//
//	magic     4 bytes  "SBXF"
//	version   uint8    1
//	nfilters  uint8
//	filters   nfilters x (id uint8, param uint32)
//	rawLen    uint64   record length before filtering
//	encLen    uint64   payload length
//	payload   encLen bytes

var frameMagic = []byte("SBXF")

const frameVersion = 1

// ErrBadFrame is returned when a stored frame cannot be parsed.
var ErrBadFrame = errors.New("malformed record frame")

// WriteFrame encodes record through p and writes the frame at w's
// position. It returns the number of bytes written.
func WriteFrame(w *binary.Writer, p *Pipeline, record []byte) (int64, error) {
	payload, err := p.Encode(record)
	if err != nil {
		return 0, err
	}
	if len(p.Infos()) > 255 {
		return 0, fmt.Errorf("too many filters: %d", len(p.Infos()))
	}

	start := w.Pos()
	if err := w.WriteBytes(frameMagic); err != nil {
		return 0, err
	}
	if err := w.WriteUint8(frameVersion); err != nil {
		return 0, err
	}
	if err := w.WriteUint8(uint8(len(p.Infos()))); err != nil {
		return 0, err
	}
	for _, info := range p.Infos() {
		if err := w.WriteUint8(info.ID); err != nil {
			return 0, err
		}
		if err := w.WriteUint32(info.Param); err != nil {
			return 0, err
		}
	}
	if err := w.WriteUint64(uint64(len(record))); err != nil {
		return 0, err
	}
	if err := w.WriteUint64(uint64(len(payload))); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(payload); err != nil {
		return 0, err
	}
	return w.Pos() - start, nil
}

// ReadFrame reads the frame at r's position and returns the decoded record.
func ReadFrame(r *binary.Reader) ([]byte, error) {
	magic, err := r.ReadBytes(len(frameMagic))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if !bytes.Equal(magic, frameMagic) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadFrame, magic)
	}
	version, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if version != frameVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFrame, version)
	}
	n, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}

	infos := make([]Info, n)
	for i := range infos {
		if infos[i].ID, err = r.ReadUint8(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
		if infos[i].Param, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
	}
	rawLen, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	encLen, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if rem := r.Remaining(); encLen > math.MaxInt || (rem >= 0 && encLen > uint64(rem)) {
		return nil, fmt.Errorf("%w: payload length %d exceeds source", ErrBadFrame, encLen)
	}
	if rawLen > math.MaxInt {
		return nil, fmt.Errorf("%w: record length %d out of range", ErrBadFrame, rawLen)
	}
	payload, err := r.ReadBytes(int(encLen))
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrBadFrame, err)
	}

	p, err := NewPipeline(infos)
	if err != nil {
		return nil, err
	}
	record, err := p.Decode(payload)
	if err != nil {
		return nil, err
	}
	if uint64(len(record)) != rawLen {
		return nil, fmt.Errorf("%w: decoded %d bytes, expected %d", ErrBadFrame, len(record), rawLen)
	}
	return record, nil
}
