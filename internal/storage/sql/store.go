// Package sql 提供基于关系数据库的存储实现（支持 MySQL 与 PostgreSQL）。
package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

// Store 关系数据库存储实现。
type Store struct {
	db         *sql.DB
	orm        *gorm.DB
	driverName string // "mysql" or "postgres"
}

// NewStore 创建数据库存储并执行自动迁移。
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var orm *gorm.DB
	if driverName == "mysql" {
		orm, err = gorm.Open(mysql.New(mysql.Config{Conn: db}), gormConfig)
	} else {
		orm, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize orm: %w", err)
	}

	store := &Store{db: db, orm: orm, driverName: driverName}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

// migrate 执行自动迁移。
func (s *Store) migrate() error {
	return s.orm.AutoMigrate(
		&domain.Template{},
		&domain.ReportLink{},
		&domain.Mailbox{},
		&domain.MailRecord{},
		&domain.TriggerBinding{},
		&domain.Activity{},
		&domain.MailDefaults{},
	)
}

// DB 返回底层连接池，供健康检查等基础设施使用。
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	return s.db.Close()
}

// Health 检查数据库连通性。
func (s *Store) Health() error {
	return s.db.Ping()
}

// SaveTemplate 保存模板及其报表关联（全量替换关联）。
func (s *Store) SaveTemplate(tpl *domain.Template) error {
	return s.orm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Reports").Save(tpl).Error; err != nil {
			return err
		}
		if err := tx.Where("template_id = ?", tpl.ID).Delete(&domain.ReportLink{}).Error; err != nil {
			return err
		}
		for i := range tpl.Reports {
			tpl.Reports[i].TemplateID = tpl.ID
			if err := tx.Create(&tpl.Reports[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTemplate 按 ID 取模板，带报表关联。
func (s *Store) GetTemplate(id string) (*domain.Template, error) {
	var tpl domain.Template
	err := s.orm.Preload("Reports").First(&tpl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListTemplates 列出全部模板。
func (s *Store) ListTemplates() ([]domain.Template, error) {
	var out []domain.Template
	err := s.orm.Preload("Reports").Order("name").Find(&out).Error
	return out, err
}

// DeleteTemplate 删除模板及其报表关联。
func (s *Store) DeleteTemplate(id string) error {
	return s.orm.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&domain.ReportLink{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Template{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return storage.ErrTemplateNotFound
		}
		return nil
	})
}

// SaveMailbox 保存邮箱。
func (s *Store) SaveMailbox(mailbox *domain.Mailbox) error {
	var existing domain.Mailbox
	err := s.orm.First(&existing, "name = ? AND id <> ?", mailbox.Name, mailbox.ID).Error
	if err == nil {
		return storage.ErrMailboxExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.orm.Save(mailbox).Error
}

// GetMailbox 按 ID 取邮箱。
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	err := s.orm.First(&mailbox, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrMailboxNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mailbox, nil
}

// GetMailboxByName 按名称取邮箱。
func (s *Store) GetMailboxByName(name string) (*domain.Mailbox, error) {
	var mailbox domain.Mailbox
	err := s.orm.First(&mailbox, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrMailboxNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mailbox, nil
}

// ListMailboxes 列出全部邮箱。
func (s *Store) ListMailboxes() ([]domain.Mailbox, error) {
	var out []domain.Mailbox
	err := s.orm.Order("name").Find(&out).Error
	return out, err
}

// DeleteMailbox 删除邮箱。
func (s *Store) DeleteMailbox(id string) error {
	result := s.orm.Delete(&domain.Mailbox{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrMailboxNotFound
	}
	return nil
}

// SaveMail 保存邮件记录。
func (s *Store) SaveMail(mail *domain.MailRecord) error {
	return s.orm.Save(mail).Error
}

// GetMail 按 ID 取邮件记录。
func (s *Store) GetMail(id string) (*domain.MailRecord, error) {
	var mail domain.MailRecord
	err := s.orm.First(&mail, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrMailNotFound
	}
	if err != nil {
		return nil, err
	}
	return &mail, nil
}

// ListMails 列出某个邮箱下的邮件记录，按创建时间倒序。
func (s *Store) ListMails(mailboxID string) ([]domain.MailRecord, error) {
	var out []domain.MailRecord
	err := s.orm.Where("mailbox_id = ?", mailboxID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// DeleteMail 删除邮件记录。
func (s *Store) DeleteMail(id string) error {
	result := s.orm.Delete(&domain.MailRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrMailNotFound
	}
	return nil
}

// SaveTrigger 保存触发器绑定。
func (s *Store) SaveTrigger(binding *domain.TriggerBinding) error {
	return s.orm.Save(binding).Error
}

// GetTrigger 按 ID 取触发器绑定。
func (s *Store) GetTrigger(id string) (*domain.TriggerBinding, error) {
	var binding domain.TriggerBinding
	err := s.orm.First(&binding, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrTriggerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &binding, nil
}

// ListTriggers 列出全部触发器绑定。
func (s *Store) ListTriggers() ([]domain.TriggerBinding, error) {
	var out []domain.TriggerBinding
	err := s.orm.Order("name").Find(&out).Error
	return out, err
}

// DeleteTrigger 删除触发器绑定。
func (s *Store) DeleteTrigger(id string) error {
	result := s.orm.Delete(&domain.TriggerBinding{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return storage.ErrTriggerNotFound
	}
	return nil
}

// SaveActivity 保存活动记录。
func (s *Store) SaveActivity(activity *domain.Activity) error {
	return s.orm.Create(activity).Error
}

// ListActivities 列出某个联系人的活动记录。
func (s *Store) ListActivities(party string) ([]domain.Activity, error) {
	var out []domain.Activity
	err := s.orm.Where("party = ?", party).Order("created_at").Find(&out).Error
	return out, err
}

// GetDefaults 返回全局邮件默认配置单例，缺失时落一条默认记录。
func (s *Store) GetDefaults() (*domain.MailDefaults, error) {
	var defaults domain.MailDefaults
	err := s.orm.First(&defaults, "id = 1").Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults = *domain.DefaultMailDefaults()
		if err := s.orm.Create(&defaults).Error; err != nil {
			return nil, err
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &defaults, nil
}

// SaveDefaults 更新全局邮件默认配置单例。
func (s *Store) SaveDefaults(defaults *domain.MailDefaults) error {
	defaults.ID = 1
	return s.orm.Save(defaults).Error
}
