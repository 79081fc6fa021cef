package scdr

import (
	"strings"
)

// homeIMSIPrefix 第二列（servedIMSI）以此开头的记录保留
const homeIMSIPrefix = "62"

// Notice 非错误提示（流量块截断）
type Notice struct {
	Tag     uint16
	Offset  int // 子记录在单元 value 中的偏移
	Message string
}

// Projection 单元的解码与投影结果
type Projection struct {
	Fields  map[string]string // 字段名 -> 解码值
	Row     []string          // 按输出列顺序
	Line    string            // Row 以 | 连接
	Kept    bool              // 是否通过行过滤
	Issues  []error           // *BoundsError / *DecodeError，偏移相对单元 value
	Notices []Notice
}

// Project 解析单元子记录、逐字段解码并投影到固定输出列
func Project(f Frame) Projection {
	return ProjectValue(f.Value)
}

// ProjectValue 同 Project，直接作用于单元 value
func ProjectValue(value []byte) Projection {
	p := Projection{Fields: make(map[string]string)}

	subs, err := ParseSubRecords(value)
	if err != nil {
		p.Issues = append(p.Issues, err)
	}
	for _, sr := range subs {
		p.decode(sr)
	}

	p.Row = make([]string, len(outputSchema))
	for i, name := range outputSchema {
		p.Row[i] = p.Fields[name]
	}
	p.Line = strings.Join(p.Row, Delimiter)
	p.Kept = KeepLine(p.Line)
	return p
}

// decode 按标签解码并写入映射，同名字段后写覆盖先写
func (p *Projection) decode(sr SubRecord) {
	name := TagName(sr.Tag)

	switch decoderFor(sr.Tag) {
	case decodeTBCD:
		p.Fields[name] = DecodeTBCD(sr.Value)
	case decodeIPAddress:
		s, err := DecodeIPAddress(sr.Value)
		if err != nil {
			p.fail(sr, err, name)
			return
		}
		p.Fields[name] = s
	case decodeASCII:
		s, err := DecodeASCII(sr.Value)
		if err != nil {
			p.fail(sr, err, name)
			return
		}
		p.Fields[name] = s
	case decodeOpeningTime:
		t, err := DecodeOpeningTime(sr.Value)
		if err != nil {
			p.fail(sr, err, FieldRecordOpeningDate, FieldRecordOpeningTime1)
			return
		}
		p.merge(t.Fields())
	case decodeTrafficVolumes:
		tv := DecodeTrafficVolumes(sr.Value)
		p.merge(tv.Fields())
		if tv.Truncated {
			p.Notices = append(p.Notices, Notice{Tag: sr.Tag, Offset: sr.Offset, Message: tv.Notice})
		}
	default:
		p.Fields[name] = DecodeInteger(sr.Value)
	}
}

func (p *Projection) merge(fields map[string]string) {
	for k, v := range fields {
		p.Fields[k] = v
	}
}

// fail 记录解码错误并清除该字段先前的值，避免输出过期数据
func (p *Projection) fail(sr SubRecord, err error, names ...string) {
	for _, n := range names {
		delete(p.Fields, n)
	}
	p.Issues = append(p.Issues, &DecodeError{Tag: sr.Tag, Offset: sr.Offset, Err: err})
}

// KeepLine 行过滤：按分隔符拆分后第二列不以 "62" 开头的记录丢弃
func KeepLine(line string) bool {
	fields := strings.Split(line, Delimiter)
	if len(fields) >= 2 && !strings.HasPrefix(fields[1], homeIMSIPrefix) {
		return false
	}
	return true
}
