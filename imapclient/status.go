package imapclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dahlgren/goimap"
	"github.com/dahlgren/goimap/internal/imapwire"
)

// statusItems 根据状态选项返回需要的状态项列表
func statusItems(options *imap.StatusOptions) []string {
	m := map[string]bool{
		"MESSAGES":        options.NumMessages,    // 消息数量
		"UIDNEXT":         options.UIDNext,        // 下一个 UID
		"UIDVALIDITY":     options.UIDValidity,    // UID 有效性
		"UNSEEN":          options.NumUnseen,      // 未读消息数量
		"DELETED":         options.NumDeleted,     // 删除消息数量
		"SIZE":            options.Size,           // 邮箱大小
		"APPENDLIMIT":     options.AppendLimit,    // 附加限制
		"DELETED-STORAGE": options.DeletedStorage, // 删除存储
		"HIGHESTMODSEQ":   options.HighestModSeq,  // 最高修改序列号
	}

	var l []string
	for k, req := range m {
		if req {
			l = append(l, k) // 添加请求的状态项
		}
	}
	return l
}

// Status 发送一个 STATUS 命令。
//
// 一个 nil 的选项指针相当于零选项值。
func (c *Client) Status(mailbox string, options *imap.StatusOptions) *StatusCommand {
	if options == nil {
		options = new(imap.StatusOptions) // 如果选项为 nil，则创建新选项
	}

	cmd := &StatusCommand{client: c, mailbox: mailbox}
	enc := c.beginCommand("STATUS", cmd)
	enc.SP().Mailbox(mailbox).SP() // 添加邮箱名称
	items := statusItems(options)  // 获取状态项列表
	enc.List(len(items), func(i int) {
		enc.Atom(items[i]) // 添加状态项
	})
	enc.end()
	return cmd
}

func (c *Client) handleStatus() error {
	data, err := readStatus(c.dec) // 读取状态数据
	if err != nil {
		return fmt.Errorf("在状态中: %v", err) // 返回错误信息
	}

	c.mirrorStatusToSelectedMailbox(data)

	cmd := c.findPendingCmdFunc(func(cmd command) bool {
		switch cmd := cmd.(type) {
		case *StatusCommand:
			return cmd.mailbox == data.Mailbox // 匹配邮箱名称
		case *ListCommand:
			return cmd.returnStatus && cmd.pendingData != nil && cmd.pendingData.Mailbox == data.Mailbox
		default:
			return false
		}
	})
	switch cmd := cmd.(type) {
	case *StatusCommand:
		cmd.data = *data // 将状态数据赋值给命令
	case *ListCommand:
		cmd.pendingData.Status = data
		cmd.mailboxes <- cmd.pendingData
		cmd.pendingData = nil
	}

	return nil
}

// mirrorStatusToSelectedMailbox 把 STATUS 响应中的数据镜像到当前已选邮箱，
// 条件是这次 STATUS 查询的正好是当前已选的邮箱。服务器允许在已选择状态下
// 对当前邮箱发出 STATUS，这实际上是获取 messages/uidNext/highestModseq
// 更新的又一条途径，与 EXISTS、HIGHESTMODSEQ 响应码地位相当。
func (c *Client) mirrorStatusToSelectedMailbox(data *imap.StatusData) {
	c.mutex.Lock()
	if c.state != imap.ConnStateSelected || c.mailbox == nil || c.mailbox.Name != data.Mailbox {
		c.mutex.Unlock()
		return
	}

	c.mailbox = c.mailbox.copy()
	update := &UnilateralDataMailbox{}
	changed := false
	if data.NumMessages != nil && *data.NumMessages != c.mailbox.NumMessages {
		c.mailbox.NumMessages = *data.NumMessages
		update.NumMessages = data.NumMessages
		changed = true
	}
	if data.UIDNext != 0 && data.UIDNext != c.mailbox.UIDNext {
		c.mailbox.UIDNext = data.UIDNext
		update.UIDNext = data.UIDNext
		changed = true
	}
	c.mutex.Unlock()

	if data.HighestModSeq != 0 {
		c.advanceHighestModSeq(data.HighestModSeq) // 单独维护单调递增，不计入 changed
	}

	if changed {
		if handler := c.options.unilateralDataHandler().Mailbox; handler != nil {
			handler(update)
		}
		c.emitEvent(&EventMailboxUpdate{Data: update})
	}
}

// StatusCommand 是一个 STATUS 命令。
type StatusCommand struct {
	commandBase
	client  *Client         // 用于 Wait 失败时做 NotFound 判定的回查
	mailbox string          // 邮箱名称
	data    imap.StatusData // 状态数据
}

// Wait 等待状态命令的完成，并返回状态数据。
//
// 如果服务器用不带 NONEXISTENT 响应码的 NO 拒绝了 STATUS（一些服务器就是
// 这么实现的），这里会额外发一次 LIST 去确认邮箱是否真的不存在，如果确实
// 不存在就把错误升级为 *NotFoundError，方便调用方用 errors.As 统一判断。
func (cmd *StatusCommand) Wait() (*imap.StatusData, error) {
	err := cmd.wait()
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) {
			if nfErr := cmd.checkNotFound(); nfErr != nil {
				err = nfErr
			}
		}
	}
	return &cmd.data, err
}

// checkNotFound 通过一次 LIST 确认 cmd.mailbox 是否存在。如果确认不存在，
// 返回 *NotFoundError；否则（包括 LIST 本身失败，无法下结论）返回 nil，
// 调用方应该保留原始错误。
func (cmd *StatusCommand) checkNotFound() error {
	if cmd.client == nil {
		return nil
	}
	entries, err := cmd.client.ListFolders("", cmd.mailbox, &ListFoldersOptions{ListOnly: true})
	if err != nil || len(entries) > 0 {
		return nil
	}
	return &NotFoundError{Err: fmt.Errorf("邮箱 %q 不存在", cmd.mailbox)}
}

// readStatus 读取状态数据
func readStatus(dec *imapwire.Decoder) (*imap.StatusData, error) {
	var data imap.StatusData

	if !dec.ExpectMailbox(&data.Mailbox) || !dec.ExpectSP() {
		return nil, dec.Err() // 返回错误
	}

	err := dec.ExpectList(func() error {
		if err := readStatusAttVal(dec, &data); err != nil {
			return fmt.Errorf("在状态属性值中: %v", dec.Err())
		}
		return nil
	})
	return &data, err
}

// readStatusAttVal 读取状态属性值
func readStatusAttVal(dec *imapwire.Decoder, data *imap.StatusData) error {
	var name string
	if !dec.ExpectAtom(&name) || !dec.ExpectSP() {
		return dec.Err() // 返回错误
	}

	var ok bool
	switch strings.ToUpper(name) {
	case "MESSAGES":
		var num uint32
		ok = dec.ExpectNumber(&num)
		data.NumMessages = &num // 设置消息数量
	case "UIDNEXT":
		var uidNext imap.UID
		ok = dec.ExpectUID(&uidNext)
		data.UIDNext = uidNext // 设置下一个 UID
	case "UIDVALIDITY":
		ok = dec.ExpectNumber(&data.UIDValidity) // 设置 UID 有效性
	case "UNSEEN":
		var num uint32
		ok = dec.ExpectNumber(&num)
		data.NumUnseen = &num // 设置未读消息数量
	case "DELETED":
		var num uint32
		ok = dec.ExpectNumber(&num)
		data.NumDeleted = &num // 设置删除消息数量
	case "SIZE":
		var size int64
		ok = dec.ExpectNumber64(&size)
		data.Size = &size // 设置邮箱大小
	case "APPENDLIMIT":
		var num uint32
		if dec.Number(&num) {
			ok = true
		} else {
			ok = dec.ExpectNIL() // 期望为 NIL
			num = ^uint32(0)     // 设置为最大值
		}
		data.AppendLimit = &num // 设置附加限制
	case "DELETED-STORAGE":
		var storage int64
		ok = dec.ExpectNumber64(&storage)
		data.DeletedStorage = &storage // 设置删除存储
	case "HIGHESTMODSEQ":
		ok = dec.ExpectModSeq(&data.HighestModSeq) // 设置最高修改序列号
	default:
		if !dec.DiscardValue() {
			return dec.Err() // 返回错误
		}
	}
	if !ok {
		return dec.Err() // 返回错误
	}
	return nil
}
