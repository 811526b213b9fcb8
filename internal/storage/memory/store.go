// Package memory 提供内存存储实现，主要用于开发验证和测试。
package memory

import (
	"sort"
	"sync"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

// Store 使用互斥锁保护的 map 保存全部实体。
type Store struct {
	mu            sync.RWMutex
	templates     map[string]*domain.Template
	mailboxes     map[string]*domain.Mailbox
	byMailboxName map[string]string // name -> mailboxID
	mails         map[string]*domain.MailRecord
	triggers      map[string]*domain.TriggerBinding
	activities    []domain.Activity
	defaults      *domain.MailDefaults
}

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{
		templates:     make(map[string]*domain.Template),
		mailboxes:     make(map[string]*domain.Mailbox),
		byMailboxName: make(map[string]string),
		mails:         make(map[string]*domain.MailRecord),
		triggers:      make(map[string]*domain.TriggerBinding),
		defaults:      domain.DefaultMailDefaults(),
	}
}

// SaveTemplate 保存模板，存在则覆盖。
func (s *Store) SaveTemplate(tpl *domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := *tpl
	s.templates[tpl.ID] = &cloned
	return nil
}

// GetTemplate 按 ID 取模板。
func (s *Store) GetTemplate(id string) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, storage.ErrTemplateNotFound
	}
	cloned := *tpl
	return &cloned, nil
}

// ListTemplates 列出全部模板，按名称排序。
func (s *Store) ListTemplates() ([]domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		out = append(out, *tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteTemplate 删除模板。
func (s *Store) DeleteTemplate(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return storage.ErrTemplateNotFound
	}
	delete(s.templates, id)
	return nil
}

// SaveMailbox 保存邮箱，名称冲突时报错。
func (s *Store) SaveMailbox(mailbox *domain.Mailbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byMailboxName[mailbox.Name]; ok && existing != mailbox.ID {
		return storage.ErrMailboxExists
	}
	// 改名时清掉旧索引
	if old, ok := s.mailboxes[mailbox.ID]; ok && old.Name != mailbox.Name {
		delete(s.byMailboxName, old.Name)
	}
	cloned := *mailbox
	s.mailboxes[mailbox.ID] = &cloned
	s.byMailboxName[mailbox.Name] = mailbox.ID
	return nil
}

// GetMailbox 按 ID 取邮箱。
func (s *Store) GetMailbox(id string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mailbox, ok := s.mailboxes[id]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	cloned := *mailbox
	return &cloned, nil
}

// GetMailboxByName 按名称取邮箱。
func (s *Store) GetMailboxByName(name string) (*domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byMailboxName[name]
	if !ok {
		return nil, storage.ErrMailboxNotFound
	}
	cloned := *s.mailboxes[id]
	return &cloned, nil
}

// ListMailboxes 列出全部邮箱，按名称排序。
func (s *Store) ListMailboxes() ([]domain.Mailbox, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Mailbox, 0, len(s.mailboxes))
	for _, mailbox := range s.mailboxes {
		out = append(out, *mailbox)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteMailbox 删除邮箱。
func (s *Store) DeleteMailbox(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mailbox, ok := s.mailboxes[id]
	if !ok {
		return storage.ErrMailboxNotFound
	}
	delete(s.byMailboxName, mailbox.Name)
	delete(s.mailboxes, id)
	return nil
}

// SaveMail 保存邮件记录，存在则覆盖（用于邮箱迁移和置位已发送）。
func (s *Store) SaveMail(mail *domain.MailRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := *mail
	s.mails[mail.ID] = &cloned
	return nil
}

// GetMail 按 ID 取邮件记录。
func (s *Store) GetMail(id string) (*domain.MailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mail, ok := s.mails[id]
	if !ok {
		return nil, storage.ErrMailNotFound
	}
	cloned := *mail
	return &cloned, nil
}

// ListMails 列出某个邮箱下的邮件记录，按创建时间倒序。
func (s *Store) ListMails(mailboxID string) ([]domain.MailRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MailRecord, 0)
	for _, mail := range s.mails {
		if mail.MailboxID == mailboxID {
			out = append(out, *mail)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteMail 删除邮件记录。
func (s *Store) DeleteMail(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mails[id]; !ok {
		return storage.ErrMailNotFound
	}
	delete(s.mails, id)
	return nil
}

// SaveTrigger 保存触发器绑定。
func (s *Store) SaveTrigger(binding *domain.TriggerBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := *binding
	s.triggers[binding.ID] = &cloned
	return nil
}

// GetTrigger 按 ID 取触发器绑定。
func (s *Store) GetTrigger(id string) (*domain.TriggerBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	binding, ok := s.triggers[id]
	if !ok {
		return nil, storage.ErrTriggerNotFound
	}
	cloned := *binding
	return &cloned, nil
}

// ListTriggers 列出全部触发器绑定。
func (s *Store) ListTriggers() ([]domain.TriggerBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TriggerBinding, 0, len(s.triggers))
	for _, binding := range s.triggers {
		out = append(out, *binding)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeleteTrigger 删除触发器绑定。
func (s *Store) DeleteTrigger(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.triggers[id]; !ok {
		return storage.ErrTriggerNotFound
	}
	delete(s.triggers, id)
	return nil
}

// SaveActivity 追加一条活动记录。
func (s *Store) SaveActivity(activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *activity)
	return nil
}

// ListActivities 列出某个联系人的活动记录。
func (s *Store) ListActivities(party string) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.Party == party {
			out = append(out, activity)
		}
	}
	return out, nil
}

// GetDefaults 返回全局邮件默认配置单例。
func (s *Store) GetDefaults() (*domain.MailDefaults, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := *s.defaults
	return &cloned, nil
}

// SaveDefaults 更新全局邮件默认配置单例。
func (s *Store) SaveDefaults(defaults *domain.MailDefaults) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cloned := *defaults
	cloned.ID = 1
	s.defaults = &cloned
	return nil
}

// Health 内存存储恒为健康。
func (s *Store) Health() error { return nil }

// Close 内存存储无需释放资源。
func (s *Store) Close() error { return nil }
