package database

import (
	"context"

	"gorm.io/gorm"
)

// txProvider 把已开启的事务包装成 Provider，使仓库方法可以在外部事务中复用
type txProvider struct {
	Provider
	tx *gorm.DB
}

// WithTx 返回绑定到事务 tx 的 Provider
func WithTx(p Provider, tx *gorm.DB) Provider {
	return &txProvider{Provider: p, tx: tx}
}

func (t *txProvider) DB() *gorm.DB {
	return t.tx
}

func (t *txProvider) WithContext(ctx context.Context) *gorm.DB {
	return t.tx.WithContext(ctx)
}

// Transaction 已处于事务中，直接执行
func (t *txProvider) Transaction(fn TxFunc) error {
	return fn(t.tx)
}

func (t *txProvider) TransactionWithContext(ctx context.Context, fn TxFunc) error {
	return fn(t.tx.WithContext(ctx))
}
