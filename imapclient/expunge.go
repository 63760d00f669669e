package imapclient

import (
	"github.com/dahlgren/goimap"
)

// Expunge 发送 EXPUNGE 命令，清除当前邮箱中所有带 \Deleted 标志的消息。
//
// 这是原始的 RFC 3501 EXPUNGE：它作用于整个邮箱，不限于某个范围。调用者
// 若想清除一组特定的消息，应当使用 ExpungeRange。
func (c *Client) Expunge() *ExpungeCommand {
	cmd := &ExpungeCommand{seqNums: make(chan uint32, 128)} // 创建一个 EXPUNGE 命令
	c.beginCommand("EXPUNGE", cmd).end()                    // 开始命令
	return cmd
}

// UIDExpunge 发送 UID EXPUNGE 命令，只清除 uids 中列出的、且已带
// \Deleted 标志的消息，不影响邮箱中其它已标记删除的消息。
//
// 此命令要求支持 IMAP4rev2 或 UIDPLUS 扩展。
func (c *Client) UIDExpunge(uids imap.UIDSet) *ExpungeCommand {
	cmd := &ExpungeCommand{seqNums: make(chan uint32, 128)} // 创建一个 UID EXPUNGE 命令
	enc := c.beginCommand("UID EXPUNGE", cmd)               // 开始命令
	enc.SP().NumSet(uids)                                   // 设置 UID
	enc.end()                                               // 结束命令
	return cmd
}

// ExpungeRange 实现完整的 EXPUNGE 命令过程：先对 numSet 执行
// STORE +FLAGS.SILENT (\Deleted)，把范围内的消息标记为已删除，然后根据
// options.UID 发出 UID EXPUNGE（只影响给定 UID，要求 UIDPLUS 或
// IMAP4rev2，否则自动退化为普通 EXPUNGE）或 EXPUNGE（影响邮箱内所有已
// 标记删除的消息）。
//
// numSet 不能为空。nil 的 options 指针等同于零选项值。
//
// 与 Expunge/UIDExpunge 不同，这个方法在返回前会同步等待 STORE 完成，
// 因为 EXPUNGE 是否清除正确的消息依赖于 STORE 先被服务器接受。
func (c *Client) ExpungeRange(numSet imap.NumSet, options *imap.ExpungeOptions) *ExpungeCommand {
	storeCmd := c.Store(numSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagDeleted},
	}, nil)
	if err := storeCmd.Close(); err != nil {
		cmd := &ExpungeCommand{seqNums: make(chan uint32)}
		close(cmd.seqNums)
		cmd.done = make(chan error, 1)
		cmd.done <- err
		close(cmd.done)
		return cmd
	}

	uid := options != nil && options.UID
	if uidSet, ok := numSet.(imap.UIDSet); ok && uid && c.Caps().Has(imap.CapUIDPlus) {
		return c.UIDExpunge(uidSet)
	}
	return c.Expunge()
}

// handleExpunge 处理 EXPUNGE 响应。
func (c *Client) handleExpunge(seqNum uint32) error {
	c.mutex.Lock() // 锁定以保护状态
	if c.state == imap.ConnStateSelected && c.mailbox.NumMessages > 0 {
		c.mailbox = c.mailbox.copy() // 复制邮箱状态
		c.mailbox.NumMessages--      // 减少邮件数量
	}
	c.mutex.Unlock() // 解锁

	cmd := findPendingCmdByType[*ExpungeCommand](c) // 查找待处理的命令
	if cmd != nil {
		cmd.seqNums <- seqNum // 将序列号发送到命令
	} else if handler := c.options.unilateralDataHandler().Expunge; handler != nil {
		handler(seqNum) // 调用处理程序
	}
	c.emitEvent(&EventExpunge{SeqNum: seqNum})

	return nil
}

// ExpungeCommand 是一个 EXPUNGE 命令。
//
// 调用者必须完全消耗 ExpungeCommand。一个简单的方法是
// 延迟调用 ExpungeCommand.Close。
type ExpungeCommand struct {
	commandBase
	seqNums chan uint32     // 存储序列号的通道
	data    imap.ExpungeData // HIGHESTMODSEQ 等响应码数据
}

// HighestModSeq 返回服务器在本次 EXPUNGE 的 OK 响应中回报的最高修改序列
// 号（HIGHESTMODSEQ 响应码），要求支持 CONDSTORE。零值表示服务器没有
// 回报。只能在命令完成（Close 或 Collect 返回）之后调用。
func (cmd *ExpungeCommand) HighestModSeq() uint64 {
	return cmd.data.HighestModSeq
}

// Next 前进到下一个被删除的邮件序列号。
//
// 成功时返回邮件序列号。出错或没有更多邮件时返回 0。
// 要检查错误值，请使用 Close。
func (cmd *ExpungeCommand) Next() uint32 {
	return <-cmd.seqNums // 从通道中接收序列号
}

// Close 释放命令。
//
// 调用 Close 会解锁 IMAP 客户端解码器，并让它读取下一个
// 响应。Close 后 Next 始终返回 0。
func (cmd *ExpungeCommand) Close() error {
	for cmd.Next() != 0 {
		// 忽略
	}
	return cmd.wait() // 等待命令完成
}

// Collect 将被删除的序列号累积到列表中。
//
// 这等效于重复调用 Next 然后 Close。
func (cmd *ExpungeCommand) Collect() ([]uint32, error) {
	var l []uint32 // 存储序列号的列表
	for {
		seqNum := cmd.Next() // 获取下一个序列号
		if seqNum == 0 {
			break // 没有更多序列号
		}
		l = append(l, seqNum) // 将序列号添加到列表
	}
	return l, cmd.Close() // 返回列表和关闭命令
}
