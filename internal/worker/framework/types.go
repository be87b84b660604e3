package framework

// Message 消息结构（框架内部流转）
type Message struct {
	ID       string                 // 消息 ID（队列侧）
	Queue    string                 // 队列名称
	Data     []byte                 // 原始 Job 数据
	Attempts int                    // 重试次数
	Extra    map[string]interface{} // 扩展字段
}
