package scdr

// SubRecord 单元内的一个子字段
type SubRecord struct {
	Tag    uint16
	Value  []byte
	Offset int // 标签首字节在单元 value 中的偏移
}

// ParseSubRecords 逐个解析 tag(1|2) + len(1) + value。
// 越界时返回已解析的子记录和 *BoundsError，越界部分丢弃。
func ParseSubRecords(data []byte) ([]SubRecord, error) {
	var subs []SubRecord
	pos := 0

	for pos < len(data) {
		start := pos
		tag := uint16(data[pos])
		pos++

		if byte(tag) == tagPrefixPrimitive || byte(tag) == tagPrefixConstructed {
			if pos >= len(data) {
				return subs, &BoundsError{Offset: start, Tag: tag, Declared: 1, Remaining: 0}
			}
			tag = tag<<8 | uint16(data[pos])
			pos++
		}

		if pos >= len(data) {
			return subs, &BoundsError{Offset: start, Tag: tag, Declared: 1, Remaining: 0}
		}
		length := int(data[pos])
		pos++

		if pos+length > len(data) {
			return subs, &BoundsError{Offset: start, Tag: tag, Declared: length, Remaining: len(data) - pos}
		}

		subs = append(subs, SubRecord{
			Tag:    tag,
			Value:  data[pos : pos+length],
			Offset: start,
		})
		pos += length
	}

	return subs, nil
}
