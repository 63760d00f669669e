package imapclient

import (
	"errors"

	"github.com/dahlgren/goimap"
)

// Create 发送 CREATE 命令，用于创建新的邮箱。
// 参数：
//
//	mailbox - 要创建的邮箱名称。
//	options - 创建选项，指向 imap.CreateOptions 结构体。
//	          nil 值的选项指针等同于零值选项。
//
// 返回值：
//
//	*CreateCommand - CREATE 命令的实例，用于后续操作。
func (c *Client) Create(mailbox string, options *imap.CreateOptions) *CreateCommand {
	cmd := &CreateCommand{mailbox: mailbox}
	enc := c.beginCommand("CREATE", cmd) // 开始 CREATE 命令
	enc.SP().Mailbox(mailbox)            // 设置邮箱名称

	if options != nil && len(options.SpecialUse) > 0 { // 检查是否有特殊用途选项
		enc.SP().Special('(').Atom("USE").SP().List(len(options.SpecialUse), func(i int) { // 开始特殊用途列表
			enc.MailboxAttr(options.SpecialUse[i]) // 添加每个特殊用途
		}).Special(')') // 结束特殊用途列表
	}
	enc.end()  // 结束命令
	return cmd // 返回 CREATE 命令实例
}

// CreateCommand 是一个 CREATE 命令。
type CreateCommand struct {
	commandBase
	mailbox string
}

// CreateData 是 CREATE 命令返回的数据。
type CreateData struct {
	Mailbox string
	// Created 为假表示邮箱已经存在（服务器以 ALREADYEXISTS 拒绝了本次
	// CREATE），这种情况不当作错误处理。
	Created bool
}

// Wait 等待 CREATE 命令完成。
//
// 如果服务器以 ALREADYEXISTS 响应码拒绝了 CREATE（目标邮箱已经存在），
// 这里不把它当成错误向上抛，而是恢复成 Created: false，让调用方能区分
// “邮箱本来就在”和“真的创建失败了”。
func (cmd *CreateCommand) Wait() (*CreateData, error) {
	err := cmd.wait()
	if err == nil {
		return &CreateData{Mailbox: cmd.mailbox, Created: true}, nil
	}

	var imapErr *imap.Error
	if errors.As(err, &imapErr) && imapErr.Code == imap.ResponseCodeAlreadyExists {
		return &CreateData{Mailbox: cmd.mailbox, Created: false}, nil
	}
	return nil, err
}
