package scdr

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame1 构造 B4 81 len value
func frame1(value []byte) []byte {
	return append([]byte{FrameMarker, 0x81, byte(len(value))}, value...)
}

// frame2 构造 B4 82 len(2) value
func frame2(value []byte) []byte {
	n := len(value)
	return append([]byte{FrameMarker, 0x82, byte(n >> 8), byte(n)}, value...)
}

func TestReadFrames_RoundTrip(t *testing.T) {
	values := [][]byte{
		{},
		{0x80, 0x01, 0x12},
		bytes.Repeat([]byte{0xAA}, 200),
		bytes.Repeat([]byte{0x55}, 255),
	}
	var stream []byte
	for _, v := range values {
		stream = append(stream, frame1(v)...)
	}

	res := ReadFrames(bytes.NewReader(stream))
	require.NoError(t, res.Err)
	require.Len(t, res.Frames, len(values))
	for i, f := range res.Frames {
		assert.Equal(t, FrameMarker, f.Start, "frame %d start", i)
		assert.Equal(t, values[i], f.Value, "frame %d value", i)
	}
}

func TestReadFrames_TwoByteLength(t *testing.T) {
	value := bytes.Repeat([]byte{0x01, 0x02}, 300)
	stream := append(frame1([]byte{0x80, 0x01, 0x12}), frame2(value)...)

	res := ReadFrames(bytes.NewReader(stream))
	require.NoError(t, res.Err)
	require.Len(t, res.Frames, 2)
	f := res.Frames[1]
	assert.Equal(t, value, f.Value)
	assert.Equal(t, int64(6), f.Offset)
	assert.Equal(t, int64(10), f.ValueOffset)
}

func TestReadFrames_StopsAtZeroPadding(t *testing.T) {
	stream := append(frame1([]byte{0x80, 0x01, 0x12}), make([]byte, 64)...)
	stream = append(stream, frame1([]byte{0x80, 0x01, 0x13})...) // 填充之后的内容不再读取

	res := ReadFrames(bytes.NewReader(stream))
	require.NoError(t, res.Err)
	assert.Len(t, res.Frames, 1)
}

func TestReadFrames_Empty(t *testing.T) {
	res := ReadFrames(bytes.NewReader(nil))
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Frames)
}

func TestReadFrames_BadMarkerKeepsPrior(t *testing.T) {
	stream := append(frame1([]byte{0x80, 0x01, 0x12}), 0xA0, 0x81, 0x00)

	res := ReadFrames(bytes.NewReader(stream))
	require.Len(t, res.Frames, 1, "units before the failure are kept")
	var fe *FrameError
	require.ErrorAs(t, res.Err, &fe)
	assert.ErrorIs(t, res.Err, ErrBadMarker)
	assert.Equal(t, int64(6), fe.Offset)
	assert.Equal(t, byte(0xA0), fe.Value)
}

func TestReadFrames_BadLengthIndicator(t *testing.T) {
	stream := []byte{FrameMarker, 0x83, 0x00, 0x00, 0x01, 0x00}

	res := ReadFrames(bytes.NewReader(stream))
	assert.Empty(t, res.Frames)
	require.ErrorIs(t, res.Err, ErrBadLengthIndicator)
	var fe *FrameError
	require.ErrorAs(t, res.Err, &fe)
	assert.Equal(t, int64(1), fe.Offset)
}

func TestReadFrames_DanglingLengthIndicator(t *testing.T) {
	stream := append(frame1([]byte{0x80, 0x01, 0x12}), FrameMarker, 0x81)

	res := ReadFrames(bytes.NewReader(stream))
	require.Len(t, res.Frames, 1)
	require.ErrorIs(t, res.Err, ErrTruncatedFrame)
	var fe *FrameError
	require.ErrorAs(t, res.Err, &fe)
	assert.Equal(t, int64(8), fe.Offset)
}

func TestReadFrames_ShortValue(t *testing.T) {
	stream := append(frame1([]byte{0x80, 0x01, 0x12}), FrameMarker, 0x81, 0x10, 0x80, 0x01)

	res := ReadFrames(bytes.NewReader(stream))
	assert.Len(t, res.Frames, 1, "partial unit must not be emitted")
	assert.ErrorIs(t, res.Err, ErrTruncatedFrame)
}

type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestReadFrames_ReaderError(t *testing.T) {
	ioErr := errors.New("disk gone")
	r := &failingReader{data: frame1([]byte{0x80, 0x01, 0x12}), err: ioErr}

	res := ReadFrames(r)
	require.Len(t, res.Frames, 1)
	assert.ErrorIs(t, res.Err, ioErr)
	assert.NotErrorIs(t, res.Err, io.EOF, "reader error must not be reported as EOF")
}
