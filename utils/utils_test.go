package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type key uint64

func (k key) HashCode() uint64 {
	// collide on purpose so buckets hold several entries
	return uint64(k) % 4
}

func (k key) Equals(o Hashable) bool {
	other, ok := o.(key)
	return ok && other == k
}

func TestMapCollidingKeys(t *testing.T) {
	m := make(Map)
	for i := 0; i < 16; i++ {
		m.Set(key(i), i*i)
	}
	m.Set(key(5), -1)
	for i := 0; i < 16; i++ {
		v, ok := m.Find(key(i))
		require.True(t, ok)
		if i == 5 {
			require.Equal(t, -1, v)
		} else {
			require.Equal(t, i*i, v)
		}
	}
	_, ok := m.Find(key(99))
	require.False(t, ok)

	require.Equal(t, 100, m.Add(key(99), 100))
	require.Equal(t, 100, m.Add(key(99), 200))

	m.Clear()
	_, ok = m.Find(key(5))
	require.False(t, ok)
}

func TestSortIntSeq(t *testing.T) {
	s := []int{3, 1, 4, 1, 5, 9, 2, 6}
	SortIntSeq(s, func(a, b int) bool { return a > b })
	require.Equal(t, []int{9, 6, 5, 4, 3, 2, 1, 1}, s)
}

func TestBufRoundTrip(t *testing.T) {
	o := OutputBuf{}
	o.AppendUint32(7)
	o.AppendUint64(1 << 40)
	o.AppendFloat64(-2.5)
	o.AppendString("hello")

	in := NewInputBuf(o.Bytes())
	require.Equal(t, uint32(7), in.ReadUint32())
	require.Equal(t, uint64(1)<<40, in.ReadUint64())
	require.Equal(t, -2.5, in.ReadFloat64())
	require.Equal(t, "hello", in.ReadString())
	require.NoError(t, in.Err())
}

func TestBufShortRead(t *testing.T) {
	in := NewInputBuf([]byte{1, 2})
	in.ReadUint64()
	require.ErrorIs(t, in.Err(), ErrShortBuffer)
}
