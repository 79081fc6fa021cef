package scdr

import (
	"errors"
	"fmt"
)

var (
	// 帧错误
	ErrBadMarker          = errors.New("invalid start byte")
	ErrBadLengthIndicator = errors.New("invalid length indicator")
	ErrTruncatedFrame     = errors.New("frame truncated")

	// 子记录越界
	ErrOutOfBounds = errors.New("sub-record exceeds unit value")

	// 字段解码错误
	ErrNonASCII         = errors.New("non-ascii byte in string field")
	ErrInsufficientData = errors.New("insufficient bytes")
	ErrShortAddress     = errors.New("address shorter than embedded length")
)

// FrameError 顶层帧读取失败（携带文件内偏移）
type FrameError struct {
	Offset int64
	Value  byte // 触发错误的字节（起始字节或长度指示）
	Err    error
}

func (e *FrameError) Error() string {
	if errors.Is(e.Err, ErrBadMarker) || errors.Is(e.Err, ErrBadLengthIndicator) {
		return fmt.Sprintf("%v 0x%02X at offset %d", e.Err, e.Value, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *FrameError) Unwrap() error { return e.Err }

// BoundsError 子记录声明长度超出剩余字节
type BoundsError struct {
	Offset    int // 子记录在单元值内的起始偏移
	Tag       uint16
	Declared  int
	Remaining int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%v: tag 0x%02X at offset %d declares %d bytes, %d remain",
		ErrOutOfBounds, e.Tag, e.Offset, e.Declared, e.Remaining)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

// DecodeError 单个字段解码失败，仅影响该字段
type DecodeError struct {
	Tag    uint16
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (0x%02X) at offset %d: %v", TagName(e.Tag), e.Tag, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
