package scdr

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// TrafficVolumes listOfTrafficVolumes 的累计结果
// QoS 取最后一次出现的值，上下行流量跨块求和
type TrafficVolumes struct {
	QoSRequested  *string
	QoSNegotiated *string
	Uplink        *big.Int
	Downlink      *big.Int
	Blocks        int // 完整处理的 change condition 块数

	// 截断不是错误：记录后返回已累计的部分
	Truncated bool
	Notice    string
}

// VolumeTagName 流量块内部标签名
func VolumeTagName(tag byte) string {
	if name, ok := volumeTagNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", tag)
}

// DecodeTrafficVolumes 遍历 30 len {tag len value}... 块序列
func DecodeTrafficVolumes(b []byte) TrafficVolumes {
	tv := TrafficVolumes{Uplink: new(big.Int), Downlink: new(big.Int)}

	rest := b
	for len(rest) >= 2 && rest[0] == changeConditionBlock {
		n := int(rest[1])
		if len(rest) < 2+n {
			tv.truncate(fmt.Sprintf("change condition %d declares %d bytes, %d remain", tv.Blocks+1, n, len(rest)-2))
			break
		}
		tv.walkBlock(rest[2 : 2+n])
		tv.Blocks++
		rest = rest[2+n:]
	}
	return tv
}

func (tv *TrafficVolumes) walkBlock(block []byte) {
	i := 0
	for i < len(block) {
		if i+2 > len(block) {
			tv.truncate(fmt.Sprintf("dangling byte 0x%02X in change condition %d", block[i], tv.Blocks+1))
			return
		}
		tag, n := block[i], int(block[i+1])
		if i+2+n > len(block) {
			tv.truncate(fmt.Sprintf("%s overruns change condition %d", VolumeTagName(tag), tv.Blocks+1))
			return
		}
		v := block[i+2 : i+2+n]

		switch tag {
		case volTagQoSRequested:
			s := qosHex(v)
			tv.QoSRequested = &s
		case volTagQoSNegotiated:
			s := qosHex(v)
			tv.QoSNegotiated = &s
		case volTagUplink:
			tv.Uplink.Add(tv.Uplink, new(big.Int).SetBytes(v))
		case volTagDownlink:
			tv.Downlink.Add(tv.Downlink, new(big.Int).SetBytes(v))
		}
		i += 2 + n
	}
}

func (tv *TrafficVolumes) truncate(notice string) {
	tv.Truncated = true
	tv.Notice = notice
}

func qosHex(v []byte) string {
	return strings.ToUpper(hex.EncodeToString(v))
}

// Fields 合并进字段映射的键值：QoS 仅在出现过时输出，流量总是输出
func (tv TrafficVolumes) Fields() map[string]string {
	out := map[string]string{
		FieldUplink:   tv.Uplink.String(),
		FieldDownlink: tv.Downlink.String(),
	}
	if tv.QoSRequested != nil {
		out[FieldQoSRequested] = *tv.QoSRequested
	}
	if tv.QoSNegotiated != nil {
		out[FieldQoSNegotiated] = *tv.QoSNegotiated
	}
	return out
}
