package domain

// Record 表示一条待渲染的业务记录。
//
// 记录本身由宿主系统持久化，这里只携带渲染所需的字段快照。
// Translations 按语言代码保存可翻译字段的覆盖值。
type Record struct {
	Model        string                    `json:"model"`
	ID           string                    `json:"id"`
	Fields       map[string]any            `json:"fields"`
	Translations map[string]map[string]any `json:"translations,omitempty"`
}

// Field 按语言解析字段值：优先取对应语言的翻译，缺失时回退到基础值。
func (r *Record) Field(name, lang string) any {
	if lang != "" {
		if tr, ok := r.Translations[lang]; ok {
			if v, ok := tr[name]; ok {
				return v
			}
		}
	}
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// Env 构造表达式求值环境：record 绑定为唯一的自由变量，
// 字段已经按给定语言完成翻译合并。
func (r *Record) Env(lang string) map[string]any {
	merged := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		merged[k] = v
	}
	if lang != "" {
		for k, v := range r.Translations[lang] {
			merged[k] = v
		}
	}
	return map[string]any{"record": merged}
}

// Sender 表示发信用户的签名信息。
type Sender struct {
	Name          string `json:"name"`
	Signature     string `json:"signature"`     // 纯文本签名
	SignatureHTML string `json:"signatureHtml"` // HTML 签名，为空时由纯文本换行转 <br> 得到
}

// RenderContext 是渲染与投递贯穿始终的显式上下文，
// 取代对全局事务/会话的隐式依赖。
type RenderContext struct {
	Language string  // 默认语言，模板 Language 表达式可覆盖
	User     *Sender // 当前发信用户，Signature 开启时使用
}
