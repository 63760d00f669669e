package imapclient

import "github.com/dahlgren/goimap"

// Event 是客户端在连接生命周期内产生的一种单方面事件。
//
// 具体的事件类型是 *EventMailboxOpen、*EventMailboxClose、*EventExpunge、
// *EventMailboxUpdate、*EventFetch 或 *EventVanished 之一。
type Event interface {
	isEvent()
}

// EventMailboxOpen 在一个邮箱被成功选中（SELECT/EXAMINE）后触发。
type EventMailboxOpen struct {
	Mailbox *SelectedMailbox
}

func (*EventMailboxOpen) isEvent() {}

// EventMailboxClose 在当前选中的邮箱被取消选中（UNSELECT/CLOSE）后触发。
type EventMailboxClose struct {
	Mailbox string
}

func (*EventMailboxClose) isEvent() {}

// EventMailboxUpdate 在服务器主动推送邮箱状态更新（FLAGS、EXISTS）时触发。
type EventMailboxUpdate struct {
	Data *UnilateralDataMailbox
}

func (*EventMailboxUpdate) isEvent() {}

// EventExpunge 在服务器主动推送一条 EXPUNGE 响应时触发。
type EventExpunge struct {
	SeqNum uint32
}

func (*EventExpunge) isEvent() {}

// EventFetch 在服务器主动推送一条未经请求的 FETCH 响应时触发。
type EventFetch struct {
	Data *FetchMessageData
}

func (*EventFetch) isEvent() {}

// EventVanished 对应 QRESYNC 的 VANISHED 响应：一批消息 UID 已经被删除。
// Earlier 为真时，这些 UID 来自 SELECT/EXAMINE 期间的历史快照。
type EventVanished struct {
	UIDs    imap.UIDSet
	Earlier bool
}

func (*EventVanished) isEvent() {}

// emitEvent 把事件投递给 options.EventHandler（如果设置了的话）。
//
// 这是对 UnilateralDataHandler 中各个专用回调字段的补充，而不是替代：
// 调用方既可以只订阅特定的回调，也可以通过单一的 EventHandler 统一处理
// 所有事件类型。
func (c *Client) emitEvent(ev Event) {
	if handler := c.options.EventHandler; handler != nil {
		handler(ev)
	}
}
