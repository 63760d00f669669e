package imapclient

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dahlgren/goimap"
	"github.com/dahlgren/goimap/internal"
)

// Append 发送 APPEND 命令，以固定大小的流式字面量写入消息内容。
//
// 因为内容是流式写入的，调用者写完之前无法判断其中是否包含 NUL 字节，
// 所以这个方法总是使用普通字面量，从不使用 LITERAL8。如果消息内容可能
// 是二进制数据（可能包含 NUL 字节），并且已经整个持有在内存中，请改用
// AppendBytes，它会按需自动协商 LITERAL8。
//
// 调用者必须调用 AppendCommand.Close 方法。
//
// options 是可选的。
func (c *Client) Append(mailbox string, size int64, options *imap.AppendOptions) *AppendCommand {
	if limit, ok := c.Caps().AppendLimit(); ok && limit != nil && size > int64(*limit) {
		limitErr := &AppendLimitError{Limit: *limit}
		cmd := &AppendCommand{wc: erroringWriteCloser{err: limitErr}}
		cmd.base().done = make(chan error, 1)
		cmd.base().done <- limitErr
		close(cmd.base().done)
		return cmd
	}

	cmd := &AppendCommand{c: c}
	c.prepareAppendRecovery(cmd, mailbox)

	cmd.enc = c.beginCommand("APPEND", cmd) // 开始 APPEND 命令
	writeAppendPrefix(cmd.enc, mailbox, options)
	cmd.wc = cmd.enc.Literal(size) // 设置字面量大小
	return cmd
}

// AppendBytes 发送 APPEND 命令，内容来自已经在内存中的 content。
//
// 当服务器通告了 BINARY 扩展、调用方没有通过 Options.DisableBinary 禁用
// 它、且 content 中包含至少一个 NUL 字节时，会使用 LITERAL8（RFC 3516）
// 代替普通字面量来编码内容；否则退化为普通字面量。
func (c *Client) AppendBytes(mailbox string, content []byte, options *imap.AppendOptions) *AppendCommand {
	if limit, ok := c.Caps().AppendLimit(); ok && limit != nil && int64(len(content)) > int64(*limit) {
		limitErr := &AppendLimitError{Limit: *limit}
		cmd := &AppendCommand{wc: erroringWriteCloser{err: limitErr}}
		cmd.base().done = make(chan error, 1)
		cmd.base().done <- limitErr
		close(cmd.base().done)
		return cmd
	}

	cmd := &AppendCommand{c: c}
	c.prepareAppendRecovery(cmd, mailbox)

	cmd.enc = c.beginCommand("APPEND", cmd)
	writeAppendPrefix(cmd.enc, mailbox, options)

	useLiteral8 := bytes.IndexByte(content, 0) >= 0 &&
		c.Caps().Has(imap.CapBinary) &&
		!c.options.DisableBinary
	if useLiteral8 {
		cmd.wc = cmd.enc.Literal8(int64(len(content)))
	} else {
		cmd.wc = cmd.enc.Literal(int64(len(content)))
	}

	// 内容已经整个持有在内存中，直接同步写完并结束命令：调用方只需要
	// 调用 Wait，不需要像流式 Append 那样自己驱动 Write/Close。写入失败
	// 通常意味着连接已经损坏，与流式 Append 一样，交由连接的读循环在
	// 断开时通过 closeWithError 完成这条挂起的命令。
	cmd.wc.Write(content)
	cmd.wc.Close()
	cmd.enc.end()
	cmd.enc = nil
	return cmd
}

// writeAppendPrefix 写入 APPEND 命令中邮箱名、标志、时间戳部分，
// 字面量前导语法以外的全部内容。
func writeAppendPrefix(enc *commandEncoder, mailbox string, options *imap.AppendOptions) {
	enc.SP().Mailbox(mailbox).SP() // 设置邮箱名称
	if options != nil && len(options.Flags) > 0 {
		enc.List(len(options.Flags), func(i int) {
			enc.Flag(options.Flags[i]) // 添加标志
		}).SP()
	}
	if options != nil && !options.Time.IsZero() {
		enc.String(options.Time.Format(internal.DateTimeLayout)).SP() // 设置时间
	}
}

// prepareAppendRecovery 在 APPEND 的目标邮箱就是当前已选邮箱时，记录
// APPEND 发出前的消息总数，供之后恢复新消息的序号使用。
func (c *Client) prepareAppendRecovery(cmd *AppendCommand, mailbox string) {
	if sel := c.Mailbox(); sel != nil && sel.Name == mailbox {
		cmd.toCurrentMailbox = true
		cmd.numMessagesBefore = sel.NumMessages
	}
}

// AppendCommand 是一个 APPEND 命令。
//
// 调用者必须写入消息内容，然后调用 Close 方法。
type AppendCommand struct {
	commandBase
	c    *Client
	enc  *commandEncoder // 命令编码器
	wc   io.WriteCloser  // 写入关闭器
	data imap.AppendData // APPEND 数据

	toCurrentMailbox  bool   // APPEND 的目标邮箱是否为当前已选邮箱
	numMessagesBefore uint32 // 发出 APPEND 之前邮箱的消息总数
}

// Write 将字节写入命令。
func (cmd *AppendCommand) Write(b []byte) (int, error) {
	return cmd.wc.Write(b)
}

// Close 关闭命令，等待服务器响应。
func (cmd *AppendCommand) Close() error {
	err := cmd.wc.Close() // 关闭写入器
	if cmd.enc != nil {
		cmd.enc.end() // 结束命令
		cmd.enc = nil
	}
	return err
}

// erroringWriteCloser 是一个总是返回同一个错误的 io.WriteCloser，
// 用于在命令发送前就已知必然失败的场景（例如消息大小超出 APPENDLIMIT）。
type erroringWriteCloser struct {
	err error
}

func (w erroringWriteCloser) Write([]byte) (int, error) { return 0, w.err }
func (w erroringWriteCloser) Close() error              { return w.err }

// Wait 等待 APPEND 命令的响应，并在 APPEND 的目标是当前已选邮箱时尝试
// 恢复新消息的序号和 UID。此时返回的错误为 nil 就意味着 SeqNum 和 UID
// 至少有一个被填充；两者都无法恢复时返回错误。
func (cmd *AppendCommand) Wait() (*imap.AppendData, error) {
	if err := cmd.wait(); err != nil {
		return &cmd.data, err
	}
	if cmd.toCurrentMailbox {
		cmd.recoverSeqAndUID()
		if cmd.data.SeqNum == 0 && cmd.data.UID == 0 {
			return &cmd.data, fmt.Errorf("imapclient: APPEND 已完成，但无法确定新消息的序号或 UID")
		}
	}
	return &cmd.data, nil
}

// recoverSeqAndUID 在服务器省略了 APPENDUID 或 EXISTS 时尽力恢复
// 新消息的序号与 UID。
func (cmd *AppendCommand) recoverSeqAndUID() {
	if cmd.data.SeqNum == 0 {
		if mbox := cmd.c.Mailbox(); mbox != nil && mbox.NumMessages > cmd.numMessagesBefore {
			cmd.data.SeqNum = mbox.NumMessages
		}
	}
	if cmd.data.SeqNum == 0 {
		// 服务器在 APPEND 过程中没有发送 EXISTS，补发一次 NOOP 强制刷新。
		if err := cmd.c.Noop().Wait(); err == nil {
			if mbox := cmd.c.Mailbox(); mbox != nil && mbox.NumMessages > cmd.numMessagesBefore {
				cmd.data.SeqNum = mbox.NumMessages
			}
		}
	}
	if cmd.data.UID == 0 && cmd.data.SeqNum != 0 {
		if uid, err := cmd.c.searchUIDBySeqNum(cmd.data.SeqNum); err == nil {
			cmd.data.UID = uid
		}
	}
}

// searchUIDBySeqNum 通过 UID SEARCH <seqnum> 把一个序号翻译成 UID，
// 用于在服务器不支持 UIDPLUS 的情况下恢复 APPEND 新消息的 UID。
func (c *Client) searchUIDBySeqNum(seqNum uint32) (imap.UID, error) {
	data, err := c.UIDSearch(&imap.SearchCriteria{
		SeqNum: []imap.SeqSet{imap.SeqSetNum(seqNum)},
	}, nil).Wait()
	if err != nil {
		return 0, err
	}
	uids, _ := data.All.(imap.UIDSet)
	nums, ok := uids.Nums()
	if !ok || len(nums) == 0 {
		return 0, &NotFoundError{Err: fmt.Errorf("imapclient: 无法通过序号 %v 恢复 UID", seqNum)}
	}
	return nums[0], nil
}
