// Package repo 实现数据访问层，负责目录快照与数据库的交互。
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// ErrEmptyScreen 表示未指定快照所属的界面
var ErrEmptyScreen = errors.New("screen is required")

// CatalogRepository 定义目录快照数据访问接口。
// 快照按界面（market/activity）整体存取，条目按 ref 排序即目录顺序。
type CatalogRepository interface {
	List(ctx context.Context, screen string) ([]domain.CatalogEntry, error)
	// Refresh 直接读取数据源，不经过任何缓存
	Refresh(ctx context.Context, screen string) ([]domain.CatalogEntry, error)
	Count(ctx context.Context, screen string) (int64, error)
	ReplaceAll(ctx context.Context, screen string, entries []domain.CatalogEntry) error
}

// catalogRepo 实现 CatalogRepository 接口
type catalogRepo struct {
	db *sql.DB
}

// NewCatalogRepository 创建目录仓储实例
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

// Refresh 与 List 相同，数据库本身即数据源
func (r *catalogRepo) Refresh(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	return r.List(ctx, screen)
}

// List 读取界面的完整快照
func (r *catalogRepo) List(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	if screen == "" {
		return nil, ErrEmptyScreen
	}

	query := `
		SELECT ref, entry_id, category, label, created_at, price_units, quantity,
		       improved, kind, status, time_left, multiplier
		FROM catalog_entries
		WHERE screen = ?
		ORDER BY ref ASC
	`
	rows, err := r.db.QueryContext(ctx, query, screen)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.CatalogEntry, 0)
	index := make(map[int]int)
	for rows.Next() {
		var e domain.CatalogEntry
		var category, kind, status string
		if err := rows.Scan(
			&e.Ref, &e.ID, &category, &e.Label, &e.CreatedAt, &e.PriceUnits, &e.Quantity,
			&e.Improved, &kind, &status, &e.TimeLeft, &e.Multiplier,
		); err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		e.Category = domain.Category(category)
		e.Kind = domain.ListingKind(kind)
		e.Status = domain.EventStatus(status)
		e.Tags = []string{}
		index[e.Ref] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog entries: %w", err)
	}

	if err := r.loadTags(ctx, screen, entries, index); err != nil {
		return nil, err
	}
	if err := r.loadSubItems(ctx, screen, entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *catalogRepo) loadTags(ctx context.Context, screen string, entries []domain.CatalogEntry, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_ref, tag FROM catalog_tags WHERE screen = ? ORDER BY entry_ref, position`, screen)
	if err != nil {
		return fmt.Errorf("failed to list catalog tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref int
		var tag string
		if err := rows.Scan(&ref, &tag); err != nil {
			return fmt.Errorf("failed to scan catalog tag: %w", err)
		}
		if i, ok := index[ref]; ok {
			entries[i].Tags = append(entries[i].Tags, tag)
		}
	}
	return rows.Err()
}

func (r *catalogRepo) loadSubItems(ctx context.Context, screen string, entries []domain.CatalogEntry, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT entry_ref, name, quantity, media_ref FROM catalog_sub_items WHERE screen = ? ORDER BY entry_ref, position`, screen)
	if err != nil {
		return fmt.Errorf("failed to list catalog sub items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ref int
		var item domain.SubItem
		if err := rows.Scan(&ref, &item.Name, &item.Quantity, &item.MediaRef); err != nil {
			return fmt.Errorf("failed to scan catalog sub item: %w", err)
		}
		if i, ok := index[ref]; ok {
			entries[i].SubItems = append(entries[i].SubItems, item)
		}
	}
	return rows.Err()
}

// Count 统计界面快照条目数
func (r *catalogRepo) Count(ctx context.Context, screen string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM catalog_entries WHERE screen = ?`, screen).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count catalog entries: %w", err)
	}
	return count, nil
}

// ReplaceAll 在一个事务内替换界面的完整快照，ref 按切片顺序重新分配
func (r *catalogRepo) ReplaceAll(ctx context.Context, screen string, entries []domain.CatalogEntry) error {
	if screen == "" {
		return ErrEmptyScreen
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"catalog_tags", "catalog_sub_items", "catalog_entries"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE screen = ?", screen); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if len(entries) > 0 {
		if err := insertEntries(ctx, tx, screen, entries); err != nil {
			return err
		}
		if err := insertDetails(ctx, tx, screen, entries); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertEntries 批量写入条目主表
func insertEntries(ctx context.Context, tx *sql.Tx, screen string, entries []domain.CatalogEntry) error {
	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries)*13)
	for i, e := range entries {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			i, screen, e.ID, string(e.Category), e.Label, e.CreatedAt.UTC(), e.PriceUnits, e.Quantity,
			e.Improved, string(e.Kind), string(e.Status), e.TimeLeft, e.Multiplier,
		)
	}

	query := `
		INSERT INTO catalog_entries (ref, screen, entry_id, category, label, created_at, price_units,
		                             quantity, improved, kind, status, time_left, multiplier)
		VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert catalog entries: %w", err)
	}
	return nil
}

// insertDetails 写入标签与组合物品
func insertDetails(ctx context.Context, tx *sql.Tx, screen string, entries []domain.CatalogEntry) error {
	tagStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_tags (screen, entry_ref, position, tag) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tag insert: %w", err)
	}
	defer tagStmt.Close()

	itemStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_sub_items (screen, entry_ref, position, name, quantity, media_ref) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sub item insert: %w", err)
	}
	defer itemStmt.Close()

	for ref, e := range entries {
		for pos, tag := range e.Tags {
			if _, err := tagStmt.ExecContext(ctx, screen, ref, pos, tag); err != nil {
				return fmt.Errorf("failed to insert tag for %s: %w", e.Key(), err)
			}
		}
		for pos, item := range e.SubItems {
			if _, err := itemStmt.ExecContext(ctx, screen, ref, pos, item.Name, item.Quantity, item.MediaRef); err != nil {
				return fmt.Errorf("failed to insert sub item for %s: %w", e.Key(), err)
			}
		}
	}
	return nil
}
