package scdr

import "fmt"

// FrameMarker 顶层 S-CDR 单元起始字节
const FrameMarker byte = 0xB4

// 长度指示字节
const (
	lengthForm1 byte = 0x81 // 后随1字节长度
	lengthForm2 byte = 0x82 // 后随2字节大端长度
)

// 双字节标签前缀
const (
	tagPrefixPrimitive   byte = 0x9F
	tagPrefixConstructed byte = 0xBF
)

// 子记录标签
const (
	TagRecordType                  uint16 = 0x80
	TagNetworkInitiation           uint16 = 0x81
	TagServedIMSI                  uint16 = 0x83
	TagServedIMEI                  uint16 = 0x84
	TagSGSNAddress                 uint16 = 0xA5
	TagMSNetworkCapability         uint16 = 0x86
	TagRoutingArea                 uint16 = 0x87
	TagLocationAreaCode            uint16 = 0x88
	TagCellIdentifier              uint16 = 0x89
	TagChargingID                  uint16 = 0x8A
	TagGGSNAddressUsed             uint16 = 0xAB
	TagAccessPointNameNI           uint16 = 0x8C
	TagPDPType                     uint16 = 0x8D
	TagServedPDPAddress            uint16 = 0xAE
	TagListOfTrafficVolumes        uint16 = 0xAF
	TagRecordOpeningTime           uint16 = 0x90
	TagDuration                    uint16 = 0x91
	TagSGSNChange                  uint16 = 0x92
	TagCauseForRecClosing          uint16 = 0x93
	TagRecordSequenceNumber        uint16 = 0x95
	TagDiagnostics                 uint16 = 0xB4
	TagRecSequenceNumList          uint16 = 0xB5
	TagNodeID                      uint16 = 0x96
	TagRecordExtensions            uint16 = 0xB7
	TagLocalSequenceNumberList     uint16 = 0x98
	TagAPNSelectionMode            uint16 = 0x99
	TagAccessPointNameOI           uint16 = 0x9A
	TagServedMSISDN                uint16 = 0x9B
	TagChargingCharacteristics     uint16 = 0x9C
	TagRATType                     uint16 = 0x9D
	TagCAMELInformationPDP         uint16 = 0xBE
	TagRNCUnsentDownlinkVolumeList uint16 = 0xBF1F
	TagChChSelectionMode           uint16 = 0x9F20
	TagDynamicAddressFlag          uint16 = 0x9F21
	TagIMSIUnauthenticatedFlag     uint16 = 0x9F22
	TagUserCSGInformation          uint16 = 0xBF23
	TagServedPDPPDNAddressExt      uint16 = 0xBF24
	TagSGSNPLMNIdentifier          uint16 = 0x9F28
	TagConsolidationResult         uint16 = 0x9F32
)

var tagNames = map[uint16]string{
	TagRecordType:                  "recordType",
	TagNetworkInitiation:           "networkInitiation",
	TagServedIMSI:                  "servedIMSI",
	TagServedIMEI:                  "servedIMEI",
	TagSGSNAddress:                 "sgsnAddress",
	TagMSNetworkCapability:         "msNetworkCapability",
	TagRoutingArea:                 "routingArea",
	TagLocationAreaCode:            "locationAreaCode",
	TagCellIdentifier:              "cellIdentifier",
	TagChargingID:                  "chargingID",
	TagGGSNAddressUsed:             "ggsnAddressUsed",
	TagAccessPointNameNI:           "accessPointNameNI",
	TagPDPType:                     "pdpType",
	TagServedPDPAddress:            "servedPDPAddress",
	TagListOfTrafficVolumes:        "listOfTrafficVolumes",
	TagRecordOpeningTime:           "recordOpeningTime",
	TagDuration:                    "duration",
	TagSGSNChange:                  "sgsnChange",
	TagCauseForRecClosing:          "causeForRecClosing",
	TagRecordSequenceNumber:        "recordSequenceNumber",
	TagDiagnostics:                 "diagnostics",
	TagRecSequenceNumList:          "recSequenceNumList",
	TagNodeID:                      "nodeID",
	TagRecordExtensions:            "recordExtensions",
	TagLocalSequenceNumberList:     "localSequenceNumberList",
	TagAPNSelectionMode:            "apnSelectionMode",
	TagAccessPointNameOI:           "accessPointNameOI",
	TagServedMSISDN:                "servedMSISDN",
	TagChargingCharacteristics:     "chargingCharacteristics",
	TagRATType:                     "rATType",
	TagCAMELInformationPDP:         "cAMELInformationPDP",
	TagRNCUnsentDownlinkVolumeList: "rNCUnsentDownlinkVolumeList",
	TagChChSelectionMode:           "chChSelectionMode",
	TagDynamicAddressFlag:          "dynamicAddressFlag",
	TagIMSIUnauthenticatedFlag:     "iMSIunauthenticatedFlag",
	TagUserCSGInformation:          "userCSGInformation",
	TagServedPDPPDNAddressExt:      "servedPDPPDNAddressExt",
	TagSGSNPLMNIdentifier:          "sgsnPLMNIdentifier",
	TagConsolidationResult:         "consolidationResult",
}

// TagName 返回标签的字段名；未知标签返回 0x 前缀的十六进制
func TagName(tag uint16) string {
	if name, ok := tagNames[tag]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", tag)
}

// 流量列表（0xAF）内部标签
const (
	volTagQoSRequested   byte = 0x81
	volTagQoSNegotiated  byte = 0x82
	volTagUplink         byte = 0x83
	volTagDownlink       byte = 0x84
	volTagChangeCond     byte = 0x85
	volTagChangeTime     byte = 0x86
	changeConditionBlock byte = 0x30
)

var volumeTagNames = map[byte]string{
	volTagQoSRequested:  "qosRequested",
	volTagQoSNegotiated: "qosNegotiated",
	volTagUplink:        "datavolumeGPRSUplink",
	volTagDownlink:      "datavolumeGPRSDownlink",
	volTagChangeCond:    "changeCondition",
	volTagChangeTime:    "changeTime",
}

// 解码后合并进映射的字段名
const (
	FieldQoSRequested       = "qoSRequested"
	FieldQoSNegotiated      = "qoSNegotiated"
	FieldUplink             = "DataVolumeGPRSUplink"
	FieldDownlink           = "DataVolumeGPRSDownlink"
	FieldRecordOpeningDate  = "RecordOpeningDate"
	FieldRecordOpeningTime1 = "RecordOpeningTime1"
)

// Delimiter 输出字段分隔符
const Delimiter = "|"

var outputSchema = [...]string{
	"recordType", "servedIMSI", "sgsnAddress", "routingArea", "locationAreaCode",
	"cellIdentifier", "chargingID", "ggsnAddressUsed", "accessPointNameNI", "pdpType",
	"dynamicAddressFlag", FieldUplink, FieldDownlink, "RESERVE1",
	FieldQoSNegotiated, FieldQoSRequested, FieldRecordOpeningDate, FieldRecordOpeningTime1, "duration",
	"accessPointNameOI", "servedMSISDN",
}

// OutputSchema 返回输出列顺序的副本
func OutputSchema() []string {
	out := make([]string, len(outputSchema))
	copy(out, outputSchema[:])
	return out
}
