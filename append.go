package imap

import (
	"time"
)

// AppendOptions 包含 APPEND 命令的选项。
type AppendOptions struct {
	Flags []Flag    // 消息的标志，可以是多个 Flag 的组合
	Time  time.Time // 指定的时间，用于设置消息的时间戳
}

// AppendData 是 APPEND 命令返回的数据。
type AppendData struct {
	UID         UID    // 消息的唯一标识符，要求支持 UIDPLUS 或 IMAP4rev2
	UIDValidity uint32 // UID 的有效性，表示 UID 可能会在此有效性范围内变化

	// SeqNum 是新消息在当前已选邮箱中的序号，仅当 APPEND 的目标邮箱就是
	// 调用时已选中的邮箱时才会被填充（否则新消息根本不在当前会话可见的
	// 编号空间里）。它来自 APPEND 执行期间服务器发送的 EXISTS 通知，或者
	// 在服务器省略了该通知时，来自随后补发的 NOOP。
	SeqNum uint32
}
