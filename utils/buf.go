package utils

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrShortBuffer is returned when a decode runs past the end of the input.
var ErrShortBuffer = errors.New("utils: short buffer")

type OutputBuf struct {
	buf []byte
}

func (o *OutputBuf) AppendUint32(x uint32) {
	o.buf = binary.LittleEndian.AppendUint32(o.buf, x)
}

func (o *OutputBuf) AppendUint64(x uint64) {
	o.buf = binary.LittleEndian.AppendUint64(o.buf, x)
}

func (o *OutputBuf) AppendFloat64(x float64) {
	o.AppendUint64(math.Float64bits(x))
}

func (o *OutputBuf) AppendString(s string) {
	o.AppendUint64(uint64(len(s)))
	o.buf = append(o.buf, s...)
}

func (o *OutputBuf) Bytes() []byte {
	return o.buf
}

type InputBuf struct {
	buf []byte
	err error
}

func NewInputBuf(buf []byte) *InputBuf {
	return &InputBuf{buf: buf}
}

// Err reports the first decode failure; reads after a failure return zeros.
func (i *InputBuf) Err() error {
	return i.err
}

func (i *InputBuf) ReadUint32() uint32 {
	if i.err != nil || len(i.buf) < 4 {
		i.err = ErrShortBuffer
		return 0
	}
	x := binary.LittleEndian.Uint32(i.buf[:4])
	i.buf = i.buf[4:]
	return x
}

func (i *InputBuf) ReadUint64() uint64 {
	if i.err != nil || len(i.buf) < 8 {
		i.err = ErrShortBuffer
		return 0
	}
	x := binary.LittleEndian.Uint64(i.buf[:8])
	i.buf = i.buf[8:]
	return x
}

func (i *InputBuf) ReadFloat64() float64 {
	return math.Float64frombits(i.ReadUint64())
}

func (i *InputBuf) ReadString() string {
	n := i.ReadUint64()
	if i.err != nil || uint64(len(i.buf)) < n {
		i.err = ErrShortBuffer
		return ""
	}
	s := string(i.buf[:n])
	i.buf = i.buf[n:]
	return s
}
