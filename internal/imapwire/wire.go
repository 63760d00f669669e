// Package imapwire 实现 IMAP4rev1 线路协议的底层编解码：原子、带引号字符串、
// 文字串（包括 literal8 与 LITERAL+/LITERAL- 非同步文字串）、数字、列表与
// 续行请求。上层的 imapclient 与 imap 包只通过 Decoder/Encoder 与线路交互，
// 不直接处理字节。
package imapwire

import (
	"fmt"
	"io"

	"github.com/dahlgren/goimap"
)

// ConnSide 标识解码器/编码器所处的连接一侧（客户端或服务器）。Decoder 与
// Encoder 记录这一值，但目前的解析与编码逻辑并不依赖它。
type ConnSide int

const (
	ConnSideClient ConnSide = iota
	ConnSideServer
)

// NumKind 区分消息序列号与 UID，两者在线路上语法相同但语义不同。
type NumKind int

const (
	NumKindSeq NumKind = iota
	NumKindUID
)

// NumSetKind 返回 set 对应的 NumKind：UIDSet 值返回 NumKindUID，其他情况
// 返回 NumKindSeq。
func NumSetKind(set imap.NumSet) NumKind {
	if _, ok := set.(imap.UIDSet); ok {
		return NumKindUID
	}
	return NumKindSeq
}

// IsAtomChar 报告 ch 是否可以出现在 IMAP atom 中（不需要加引号或使用文字串）。
func IsAtomChar(ch byte) bool {
	switch ch {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return false
	}
	return ch > ' ' && ch < 0x7F
}

// isTextChar 报告 ch 是否可以出现在未加引号的 TEXT 中（不含 CR/LF）。
func isTextChar(ch byte) bool {
	return ch != '\r' && ch != '\n'
}

// isQuotedSafe 报告字符串是否可以安全地表示为带引号的字符串（不含 CR、LF、
// 非 ASCII 字节）。
func isQuotedSafe(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\r' || ch == '\n' || ch >= 0x80 {
			return false
		}
	}
	return true
}

// LiteralReader 是一个文字串的读取器。调用方必须在发出下一个命令之前
// 将其完全读取或关闭底层连接。
type LiteralReader interface {
	io.Reader
	Size() int64
}

var errDecoderClosed = fmt.Errorf("imapwire: 解码器已关闭")
