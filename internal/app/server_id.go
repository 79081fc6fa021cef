package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// InstanceID 生成实例ID，写入去重登记与启动日志
// 优先使用环境变量 CDR_INSTANCE_ID
func InstanceID() string {
	if id := os.Getenv("CDR_INSTANCE_ID"); id != "" {
		return id
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("cdr-converter-%s-%s", hostname, uuid.New().String()[:8])
}
