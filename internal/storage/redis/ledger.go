package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	ledgerKeyPrefix = "cdr:processed"

	// DefaultLedgerTTL 默认登记保留 7 天
	DefaultLedgerTTL = 7 * 24 * time.Hour
)

var errEmptyKey = errors.New("ledger key is empty")

// Ledger 已处理输入文件登记，按内容 SHA-256 去重
type Ledger struct {
	rdb    redis.Cmdable
	logger *zap.Logger
	ttl    time.Duration
	owner  string // 写入登记值，便于排查是哪个实例处理的
}

// NewLedger 创建登记簿
func NewLedger(rdb redis.Cmdable, logger *zap.Logger, ttl time.Duration, owner string) *Ledger {
	if ttl <= 0 {
		ttl = DefaultLedgerTTL
	}
	return &Ledger{rdb: rdb, logger: logger, ttl: ttl, owner: owner}
}

// Claim 原子登记；首次出现返回 true，已登记返回 false
func (l *Ledger) Claim(ctx context.Context, digest string) (bool, error) {
	if digest == "" {
		return false, errEmptyKey
	}
	ok, err := l.rdb.SetNX(ctx, ledgerKey(digest), l.owner+"@"+time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		owner, _ := l.rdb.Get(ctx, ledgerKey(digest)).Result()
		l.logger.Debug("input already processed", zap.String("sha256", digest), zap.String("claimed_by", owner))
	}
	return ok, nil
}

// Release 撤销登记，转换失败后允许重试
func (l *Ledger) Release(ctx context.Context, digest string) error {
	if digest == "" {
		return errEmptyKey
	}
	return l.rdb.Del(ctx, ledgerKey(digest)).Err()
}

// Seen 查询是否已登记
func (l *Ledger) Seen(ctx context.Context, digest string) (bool, error) {
	if digest == "" {
		return false, errEmptyKey
	}
	n, err := l.rdb.Exists(ctx, ledgerKey(digest)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func ledgerKey(digest string) string {
	return ledgerKeyPrefix + ":" + digest
}
