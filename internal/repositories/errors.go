package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 查询的记录不存在
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey 唯一约束冲突（重复关注、重复加入等）
	ErrDuplicateKey = errors.New("duplicate key")
)

// translate 将 gorm 错误映射为仓储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
