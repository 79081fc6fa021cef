package scdr

import "strconv"

const openingTimeLen = 6

// OpeningTime recordOpeningTime 拆分出的日期与时间
type OpeningTime struct {
	Date string // 20YYMMDD
	Time string // HHMMSS
}

// DecodeOpeningTime 前3字节为 YYMMDD，后3字节为 HHMMSS，每字节高半字节在前。
// 超出6字节的部分（时区）忽略；不足6字节返回 ErrInsufficientData。
func DecodeOpeningTime(b []byte) (OpeningTime, error) {
	if len(b) < openingTimeLen {
		return OpeningTime{}, ErrInsufficientData
	}
	return OpeningTime{
		Date: "20" + packedDigits(b[0]) + packedDigits(b[1]) + packedDigits(b[2]),
		Time: packedDigits(b[3]) + packedDigits(b[4]) + packedDigits(b[5]),
	}, nil
}

func packedDigits(v byte) string {
	return strconv.Itoa(int(v>>4)) + strconv.Itoa(int(v&0x0F))
}

// Fields 合并进字段映射的键值
func (t OpeningTime) Fields() map[string]string {
	return map[string]string{
		FieldRecordOpeningDate:  t.Date,
		FieldRecordOpeningTime1: t.Time,
	}
}
