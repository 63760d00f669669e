package imapclient

import (
	"errors"
	"fmt"

	"github.com/dahlgren/goimap"
)

// NoConnectionError 在命令需要一个活动连接，而客户端已经关闭或连接已经
// 丢失时返回。
type NoConnectionError struct {
	Err error
}

func (e *NoConnectionError) Error() string {
	return fmt.Sprintf("imapclient: 没有可用的连接: %v", e.Err)
}

func (e *NoConnectionError) Unwrap() error {
	return e.Err
}

// ProtocolError 在服务器发送了无法解析，或者违反了 IMAP 语法的响应时返回。
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("imapclient: 协议错误: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// CommandError 包装了服务器对某条命令返回的 NO 或 BAD 状态响应。
type CommandError struct {
	Err *imap.Error
}

func (e *CommandError) Error() string {
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NotFoundError 在请求的邮箱或消息不存在时返回。
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("imapclient: 未找到: %v", e.Err)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// PermissionError 在服务器因权限不足拒绝命令时返回。
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("imapclient: 权限不足: %v", e.Err)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// AppendLimitError 在 APPEND 的消息大小超出服务器通告的 APPENDLIMIT 时返回。
type AppendLimitError struct {
	Limit uint32
}

func (e *AppendLimitError) Error() string {
	return fmt.Sprintf("imapclient: 消息大小超出服务器限制 (%v 字节)", e.Limit)
}

// TimeoutError 在等待服务器响应超过配置的超时时间时返回。
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("imapclient: 超时: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// wrapCommandErr 把一个原始的命令错误翻译成更具体的错误类型，
// 根据状态响应的 Type 和 Code 做分类，方便调用方用 errors.As 判断错误种类。
func wrapCommandErr(err error) error {
	if err == nil {
		return nil
	}

	var imapErr *imap.Error
	if !errors.As(err, &imapErr) {
		return err
	}

	switch imapErr.Code {
	case imap.ResponseCodeNonExistent:
		return &NotFoundError{Err: imapErr}
	case imap.ResponseCodeNoPerm, imap.ResponseCodeAuthorizationFailed:
		return &PermissionError{Err: imapErr}
	}

	return &CommandError{Err: imapErr}
}
