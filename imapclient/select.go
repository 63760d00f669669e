package imapclient

import (
	"fmt"

	"github.com/dahlgren/goimap"
	"github.com/dahlgren/goimap/internal"
)

// Select 发送 SELECT 或 EXAMINE 命令。
//
// nil 的选项指针等同于零选项值。
func (c *Client) Select(mailbox string, options *imap.SelectOptions) *SelectCommand {
	cmdName := "SELECT"                     // 默认命令为 SELECT
	if options != nil && options.ReadOnly { // 如果选项为只读，则使用 EXAMINE 命令
		cmdName = "EXAMINE"
	}

	if !c.folderCachePopulated() {
		// 尽力填充一次文件夹缓存；失败（例如服务器不支持本次调用用到的
		// LIST 选项）不应该阻止 SELECT 本身继续执行。
		c.ListFolders("", "*", &ListFoldersOptions{ListOnly: true})
	}

	cmd := &SelectCommand{mailbox: mailbox} // 创建选择命令

	hasCondStore := options != nil && options.CondStore
	hasQResync := options != nil && options.QResync != nil
	if hasQResync {
		cmd.requestedQResync = true
		cmd.requestedUIDValidity = options.QResync.UIDValidity
	}

	enc := c.beginCommand(cmdName, cmd) // 开始命令编码
	enc.SP().Mailbox(mailbox)           // 添加邮箱参数

	if hasCondStore || hasQResync {
		enc.SP().Special('(')
		if hasCondStore {
			enc.Atom("CONDSTORE")
			if hasQResync {
				enc.SP()
			}
		}
		if hasQResync {
			writeQResyncParams(enc, options.QResync)
		}
		enc.Special(')')
	}

	enc.end()  // 结束命令
	return cmd // 返回选择命令
}

// writeQResyncParams 写入 QRESYNC 选择参数（RFC 7162 第 3.2.5 节）：
//
//	QRESYNC (uidvalidity mod-sequence-value [known-uids [seq-match-data]])
func writeQResyncParams(enc *commandEncoder, opts *imap.QResyncOptions) {
	enc.Atom("QRESYNC").SP().Special('(')
	enc.Number64(int64(opts.UIDValidity)).SP().ModSeq(opts.ModSeq)
	if len(opts.KnownUIDs) > 0 {
		enc.SP().NumSet(opts.KnownUIDs)
	}
	if opts.SeqMatch != nil {
		enc.SP().Special('(')
		enc.NumSet(opts.SeqMatch.SeqNums).SP().NumSet(opts.SeqMatch.UIDs)
		enc.Special(')')
	}
	enc.Special(')')
}

// Unselect 发送 UNSELECT 命令。
//
// 此命令要求支持 IMAP4rev2 或 UNSELECT 扩展。
func (c *Client) Unselect() *Command {
	cmd := &unselectCommand{}             // 创建 UNSELECT 命令
	c.beginCommand("UNSELECT", cmd).end() // 开始并结束命令
	return &cmd.Command                   // 返回命令
}

// UnselectAndExpunge 发送 CLOSE 命令。
//
// CLOSE 隐式执行静默 EXPUNGE 命令。
func (c *Client) UnselectAndExpunge() *Command {
	cmd := &unselectCommand{}          // 创建 UNSELECT 命令
	c.beginCommand("CLOSE", cmd).end() // 开始并结束命令
	return &cmd.Command                // 返回命令
}

// handleVanished 处理 VANISHED 响应（RFC 7162 第 3.2.10 节），
// QRESYNC 用它代替逐条 EXPUNGE 来批量报告已删除的消息 UID。
func (c *Client) handleVanished() error {
	earlier := false
	if c.dec.Special('(') {
		if !c.dec.ExpectAtom(new(string)) { // 消费 "EARLIER"
			return fmt.Errorf("in vanished-resp: %v", c.dec.Err())
		}
		earlier = true
		if !c.dec.ExpectSpecial(')') || !c.dec.ExpectSP() {
			return fmt.Errorf("in vanished-resp: %v", c.dec.Err())
		}
	} else if !c.dec.ExpectSP() {
		return fmt.Errorf("in vanished-resp: %v", c.dec.Err())
	}

	var uidSet imap.UIDSet
	if !c.dec.ExpectUIDSet(&uidSet) {
		return fmt.Errorf("in vanished-resp: %v", c.dec.Err())
	}

	if handler := c.options.unilateralDataHandler().Vanished; handler != nil {
		handler(uidSet, earlier)
	}
	c.emitEvent(&EventVanished{UIDs: uidSet, Earlier: earlier})

	return nil
}

func (c *Client) handleFlags() error {
	flags, err := internal.ExpectFlagList(c.dec) // 读取标志列表
	if err != nil {
		return err // 如果有错误，返回错误
	}

	c.mutex.Lock()                         // 锁定以避免并发问题
	if c.state == imap.ConnStateSelected { // 如果状态为选中
		c.mailbox = c.mailbox.copy()     // 复制当前邮箱
		c.mailbox.PermanentFlags = flags // 更新永久标志
	}
	c.mutex.Unlock() // 解锁

	cmd := findPendingCmdByType[*SelectCommand](c) // 查找待处理的选择命令
	if cmd != nil {
		cmd.data.Flags = flags // 更新命令的数据标志
	} else {
		data := &UnilateralDataMailbox{Flags: flags}
		if handler := c.options.unilateralDataHandler().Mailbox; handler != nil {
			handler(data) // 调用处理程序
		}
		c.emitEvent(&EventMailboxUpdate{Data: data})
	}

	return nil // 返回成功
}

func (c *Client) handleExists(num uint32) error {
	cmd := findPendingCmdByType[*SelectCommand](c) // 查找待处理的选择命令
	if cmd != nil {
		cmd.data.NumMessages = num // 更新命令的数据消息数
	} else {
		c.mutex.Lock()                         // 锁定以避免并发问题
		if c.state == imap.ConnStateSelected { // 如果状态为选中
			c.mailbox = c.mailbox.copy() // 复制当前邮箱
			c.mailbox.NumMessages = num  // 更新消息数量
		}
		c.mutex.Unlock() // 解锁

		data := &UnilateralDataMailbox{NumMessages: &num}
		if handler := c.options.unilateralDataHandler().Mailbox; handler != nil {
			handler(data) // 调用处理程序
		}
		c.emitEvent(&EventMailboxUpdate{Data: data})
	}
	return nil // 返回成功
}

// SelectCommand 是 SELECT 命令。
type SelectCommand struct {
	commandBase
	mailbox string          // 邮箱名称
	data    imap.SelectData // 选择数据

	// requestedQResync 和 requestedUIDValidity 记录调用方在 SELECT 时
	// 请求的 QRESYNC 参数，用于在命令完成后判断服务器是否确认可以使用
	// QRESYNC（见 completeCommand 中对 data.QResyncEnabled 的计算）。
	requestedQResync     bool
	requestedUIDValidity uint32
}

func (cmd *SelectCommand) Wait() (*imap.SelectData, error) {
	return &cmd.data, cmd.wait() // 等待命令完成并返回选择数据
}

type unselectCommand struct {
	Command // UNSELECT 命令
}
