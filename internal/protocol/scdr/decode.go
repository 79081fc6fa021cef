package scdr

import (
	"math/big"
	"strconv"
	"strings"
)

// decoderKind 子记录值的解码方式
type decoderKind uint8

const (
	decodeInteger decoderKind = iota // 默认：大端无符号整数
	decodeTBCD
	decodeIPAddress
	decodeASCII
	decodeOpeningTime
	decodeTrafficVolumes
)

var tagDecoders = map[uint16]decoderKind{
	TagServedIMSI:           decodeTBCD,
	TagServedIMEI:           decodeTBCD,
	TagServedMSISDN:         decodeTBCD,
	TagSGSNAddress:          decodeIPAddress,
	TagGGSNAddressUsed:      decodeIPAddress,
	TagAccessPointNameNI:    decodeASCII,
	TagAccessPointNameOI:    decodeASCII,
	TagDuration:             decodeInteger,
	TagRecordOpeningTime:    decodeOpeningTime,
	TagListOfTrafficVolumes: decodeTrafficVolumes,
}

func decoderFor(tag uint16) decoderKind {
	if k, ok := tagDecoders[tag]; ok {
		return k
	}
	return decodeInteger
}

// DecodeTBCD 每字节先低半字节后高半字节，按十进制输出
// 填充半字节 0xF 输出为 "15"，不做裁剪
func DecodeTBCD(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, v := range b {
		sb.WriteString(strconv.Itoa(int(v & 0x0F)))
		sb.WriteString(strconv.Itoa(int(v >> 4)))
	}
	return sb.String()
}

// DecodeIPAddress 解析 GSN 地址：第2字节为内嵌长度，地址从偏移2开始
func DecodeIPAddress(b []byte) (string, error) {
	if len(b) < 2 {
		return "", ErrInsufficientData
	}
	n := int(b[1])
	if 2+n > len(b) {
		return "", ErrShortAddress
	}
	octets := make([]string, n)
	for i, v := range b[2 : 2+n] {
		octets[i] = strconv.Itoa(int(v))
	}
	return strings.Join(octets, "."), nil
}

// DecodeASCII APN 等字符串字段
func DecodeASCII(b []byte) (string, error) {
	for _, v := range b {
		if v >= 0x80 {
			return "", ErrNonASCII
		}
	}
	return string(b), nil
}

// DecodeInteger 大端无符号整数的十进制表示，宽度不限；空值为 "0"
func DecodeInteger(b []byte) string {
	if len(b) <= 8 {
		var n uint64
		for _, v := range b {
			n = n<<8 | uint64(v)
		}
		return strconv.FormatUint(n, 10)
	}
	return new(big.Int).SetBytes(b).String()
}
