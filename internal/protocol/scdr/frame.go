package scdr

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// Frame 顶层 TLV 单元
// 格式：B4(1) + 长度指示(1) + 长度(1|2) + value(len)
type Frame struct {
	Start       byte
	Value       []byte
	Offset      int64 // 起始字节在流中的偏移
	ValueOffset int64 // value 首字节在流中的偏移
}

// FrameResult 一次读取的结果：已成功解出的单元 + 终止错误
// Err 为 nil 表示正常读到流末尾（或 0x00 填充）
type FrameResult struct {
	Frames []Frame
	Err    error
}

// ReadFrames 顺序读取顶层单元直到流结束或遇到 0x00。
// 任何读取错误都会终止读取，但已解出的单元仍随结果返回。
func ReadFrames(r io.Reader) FrameResult {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var (
		res    FrameResult
		offset int64
	)
	for {
		start, err := br.ReadByte()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				res.Err = readError(offset, err)
			}
			return res
		}
		if start == 0x00 {
			return res
		}
		if start != FrameMarker {
			res.Err = &FrameError{Offset: offset, Value: start, Err: ErrBadMarker}
			return res
		}

		indicator, err := br.ReadByte()
		if err != nil {
			res.Err = readError(offset+1, err)
			return res
		}

		var (
			length int
			header int64
		)
		switch indicator {
		case lengthForm1:
			b, err := br.ReadByte()
			if err != nil {
				res.Err = readError(offset+2, err)
				return res
			}
			length, header = int(b), 3
		case lengthForm2:
			var buf [2]byte
			if _, err := io.ReadFull(br, buf[:]); err != nil {
				res.Err = readError(offset+2, err)
				return res
			}
			length, header = int(binary.BigEndian.Uint16(buf[:])), 4
		default:
			res.Err = &FrameError{Offset: offset + 1, Value: indicator, Err: ErrBadLengthIndicator}
			return res
		}

		value := make([]byte, length)
		if _, err := io.ReadFull(br, value); err != nil {
			res.Err = readError(offset+header, err)
			return res
		}

		res.Frames = append(res.Frames, Frame{
			Start:       start,
			Value:       value,
			Offset:      offset,
			ValueOffset: offset + header,
		})
		offset += header + int64(length)
	}
}

// readError 将 EOF 归一为截断错误，其余 I/O 错误原样携带
func readError(offset int64, err error) *FrameError {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FrameError{Offset: offset, Err: ErrTruncatedFrame}
	}
	return &FrameError{Offset: offset, Err: err}
}
