// Package report 定义报表引擎协作方接口。
//
// 报表的真正生成属于宿主的报表子系统，本模块只消费它的执行结果，
// 把产物作为附件挂到外发邮件上。
package report

import (
	"context"
	"errors"
	"sync"

	"erpmail/backend/internal/domain"
)

// ErrReportNotFound 报表未注册
var ErrReportNotFound = errors.New("report not found")

// Result 是报表执行一次的产物。
type Result struct {
	Extension string // 文件扩展名，如 "pdf"，可以为空
	Data      []byte // 报表二进制内容
	Filename  string // 默认文件名（不含扩展名）
}

// Engine 是宿主报表子系统的协作方接口。
type Engine interface {
	// Execute 针对一条记录执行指定报表
	Execute(ctx context.Context, reportID string, record *domain.Record) (*Result, error)
}

// Definition 描述一份通过模板生成的内置报表。
type Definition struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`      // 默认文件名（不含扩展名）
	Extension string        `json:"extension"` // 产物扩展名
	Engine    domain.Engine `json:"engine"`    // 正文的求值引擎
	Body      string        `json:"body"`      // 报表正文表达式
}

// Registry 是 Engine 的内置实现：报表正文本身也是一段模板表达式，
// 对记录求值后的文本就是报表内容。适合纯文本/HTML 类报表与测试。
type Registry struct {
	mu      sync.RWMutex
	reports map[string]Definition
	render  func(eng domain.Engine, expression string, record *domain.Record, lang string) (string, error)
}

// NewRegistry 创建内置报表注册表。
func NewRegistry(render func(domain.Engine, string, *domain.Record, string) (string, error)) *Registry {
	return &Registry{
		reports: make(map[string]Definition),
		render:  render,
	}
}

// Register 登记一份报表定义，同名覆盖。
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports[def.ID] = def
}

// Get 返回报表定义。
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.reports[id]
	return def, ok
}

// List 返回全部报表定义。
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.reports))
	for _, def := range r.reports {
		out = append(out, def)
	}
	return out
}

// Remove 移除报表定义，返回是否存在。
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.reports[id]
	delete(r.reports, id)
	return ok
}

// Execute 实现 Engine：渲染报表正文并返回产物。
func (r *Registry) Execute(ctx context.Context, reportID string, record *domain.Record) (*Result, error) {
	def, ok := r.Get(reportID)
	if !ok {
		return nil, ErrReportNotFound
	}

	body, err := r.render(def.Engine, def.Body, record, "")
	if err != nil {
		return nil, err
	}

	return &Result{
		Extension: def.Extension,
		Data:      []byte(body),
		Filename:  def.Name,
	}, nil
}
