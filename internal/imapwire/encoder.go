package imapwire

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dahlgren/goimap"
)

// Encoder 将 IMAP 线路语法的记号写入底层的 bufio.Writer。
//
// 大多数方法都返回 *Encoder 以支持链式调用，例如
// enc.Atom("LOGIN").SP().String(username)。
type Encoder struct {
	w    *bufio.Writer
	side ConnSide
	err  error

	// QuotedUTF8 为 true 时，带引号的字符串可以直接包含 UTF-8 字节，
	// 对应 IMAP4rev2 或已启用 UTF8=ACCEPT 的情况。
	QuotedUTF8 bool
	// LiteralMinus 为 true 时，最多 4096 字节的文字串使用非同步形式
	// （LITERAL-，RFC 7888）。
	LiteralMinus bool
	// LiteralPlus 为 true 时，任意大小的文字串都可以使用非同步形式
	// （LITERAL+）。
	LiteralPlus bool

	// NewContinuationRequest 在需要等待服务器续行提示（"+ "）时被调用，
	// 用于注册一个新的 ContinuationRequest。
	NewContinuationRequest func() *ContinuationRequest
}

// NewEncoder 创建一个新的 Encoder。
func NewEncoder(w *bufio.Writer, side ConnSide) *Encoder {
	return &Encoder{w: w, side: side}
}

func (enc *Encoder) writeString(s string) {
	if enc.err != nil {
		return
	}
	if _, err := enc.w.WriteString(s); err != nil {
		enc.err = err
	}
}

func (enc *Encoder) writeByte(b byte) {
	if enc.err != nil {
		return
	}
	if err := enc.w.WriteByte(b); err != nil {
		enc.err = err
	}
}

// CRLF 写入行结束符并刷新底层写入器。
func (enc *Encoder) CRLF() error {
	enc.writeString("\r\n")
	if enc.err != nil {
		return enc.err
	}
	return enc.w.Flush()
}

// SP 写入一个空格。
func (enc *Encoder) SP() *Encoder {
	enc.writeByte(' ')
	return enc
}

// Special 写入单个特殊字符，如 '(' 或 ')'。
func (enc *Encoder) Special(b byte) *Encoder {
	enc.writeByte(b)
	return enc
}

// Atom 写入一个 IMAP atom。调用方负责确保 s 只包含合法的 atom 字符。
func (enc *Encoder) Atom(s string) *Encoder {
	enc.writeString(s)
	return enc
}

// Quoted 写入一个带引号的字符串，转义反斜杠和双引号。
func (enc *Encoder) Quoted(s string) *Encoder {
	enc.writeByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\\' {
			enc.writeByte('\\')
		}
		enc.writeByte(ch)
	}
	enc.writeByte('"')
	return enc
}

// String 写入一个字符串作为 atom（如果可能）、带引号字符串，或在必要时
// 作为文字串。
func (enc *Encoder) String(s string) *Encoder {
	if isAtom(s) {
		return enc.Atom(s)
	}
	if isQuotedSafe(s) || (enc.QuotedUTF8 && !strings.ContainsAny(s, "\r\n")) {
		return enc.Quoted(s)
	}
	wc := enc.Literal(int64(len(s)), enc.beginContReq(int64(len(s))))
	io.WriteString(wc, s)
	wc.Close()
	return enc
}

func isAtom(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsAtomChar(s[i]) {
			return false
		}
	}
	return true
}

// beginContReq 为一个将要发送的文字串决定是否需要等待续行提示，如果需要
// 则注册并返回对应的 ContinuationRequest。
func (enc *Encoder) beginContReq(size int64) *ContinuationRequest {
	sync := true
	if enc.LiteralPlus {
		sync = false
	} else if enc.LiteralMinus && size <= 4096 {
		sync = false
	}
	if !sync {
		return nil
	}
	if enc.NewContinuationRequest == nil {
		return nil
	}
	return enc.NewContinuationRequest()
}

// Literal 写入文字串的前导语法（{N} 或 {N+}），必要时刷新并等待续行提示，
// 并返回用于写入文字串内容的 io.WriteCloser。
func (enc *Encoder) Literal(size int64, contReq *ContinuationRequest) io.WriteCloser {
	suffix := ""
	if contReq == nil {
		suffix = "+"
	}
	enc.writeString(fmt.Sprintf("{%d%s}\r\n", size, suffix))

	if contReq != nil {
		if err := enc.w.Flush(); err != nil {
			enc.err = err
		}
		if _, err := contReq.Wait(); err != nil {
			enc.err = err
		}
	}

	return &literalWriteCloser{enc: enc, remaining: size}
}

// Literal8 写入 LITERAL8（RFC 3516）的前导语法（~{N} 或 ~{N+}），
// 标注接下来的文字串内容可能包含任意二进制字节，包括 NUL。
func (enc *Encoder) Literal8(size int64, contReq *ContinuationRequest) io.WriteCloser {
	enc.writeByte('~')
	return enc.Literal(size, contReq)
}

type literalWriteCloser struct {
	enc       *Encoder
	remaining int64
}

func (w *literalWriteCloser) Write(b []byte) (int, error) {
	if w.enc.err != nil {
		return 0, w.enc.err
	}
	if int64(len(b)) > w.remaining {
		b = b[:w.remaining]
	}
	n, err := w.enc.w.Write(b)
	w.remaining -= int64(n)
	if err != nil {
		w.enc.err = err
	}
	return n, err
}

func (w *literalWriteCloser) Close() error {
	return w.enc.err
}

// List 写入一个括号列表，为索引 0 到 n-1 调用 f，并在元素间插入空格。
func (enc *Encoder) List(n int, f func(i int)) *Encoder {
	enc.writeByte('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			enc.SP()
		}
		f(i)
	}
	enc.writeByte(')')
	return enc
}

// BeginList 开始写入一个括号列表的第一个元素，返回一个 ListEncoder 以追加
// 后续元素。
func (enc *Encoder) BeginList() *ListEncoder {
	enc.writeByte('(')
	return &ListEncoder{enc: enc}
}

// ListEncoder 辅助写入元素数量事先未知的括号列表。
type ListEncoder struct {
	enc   *Encoder
	first bool
	begun bool
}

// Item 返回底层 Encoder，用于编码列表的下一个元素。
func (le *ListEncoder) Item() *Encoder {
	if le.begun {
		le.enc.SP()
	}
	le.begun = true
	return le.enc
}

// End 结束列表。
func (le *ListEncoder) End() {
	le.enc.writeByte(')')
}

// NumSet 写入一个消息编号集合（序列号集合或 UID 集合）。
func (enc *Encoder) NumSet(numSet imap.NumSet) *Encoder {
	enc.writeString(numSet.String())
	return enc
}

// Flag 写入一个消息标志。
func (enc *Encoder) Flag(flag imap.Flag) *Encoder {
	enc.writeString(string(flag))
	return enc
}

// MailboxAttr 写入一个邮箱属性（用于 LIST/CREATE 的 \Special-Use 标志）。
func (enc *Encoder) MailboxAttr(attr imap.MailboxAttr) *Encoder {
	enc.writeString(string(attr))
	return enc
}

// Mailbox 写入一个邮箱名称，按 modified UTF-7 编码（除非已启用 UTF8=ACCEPT）。
func (enc *Encoder) Mailbox(name string) *Encoder {
	encoded := name
	if !enc.QuotedUTF8 {
		encoded = encodeMailboxName(name)
	}
	return enc.String(encoded)
}

// ModSeq 写入一个修改序列号。
func (enc *Encoder) ModSeq(modSeq uint64) *Encoder {
	enc.writeString(fmt.Sprintf("%d", modSeq))
	return enc
}

// Number64 写入一个 64 位数字。
func (enc *Encoder) Number64(n int64) *Encoder {
	enc.writeString(fmt.Sprintf("%d", n))
	return enc
}

// ContinuationRequest 表示一个挂起的服务器续行提示（"+ ..."）。
type ContinuationRequest struct {
	mutex sync.Mutex
	ch    chan struct{}
	text  string
	err   error
	done  bool
}

// NewContinuationRequest 创建一个新的、尚未完成的 ContinuationRequest。
func NewContinuationRequest() *ContinuationRequest {
	return &ContinuationRequest{ch: make(chan struct{})}
}

// Done 将续行提示标记为成功完成，text 是服务器在 "+" 之后发送的文本。
func (cr *ContinuationRequest) Done(text string) {
	cr.mutex.Lock()
	if !cr.done {
		cr.done = true
		cr.text = text
		close(cr.ch)
	}
	cr.mutex.Unlock()
}

// Cancel 将续行提示标记为失败，err 是导致它永远不会到达的错误。
func (cr *ContinuationRequest) Cancel(err error) {
	cr.mutex.Lock()
	if !cr.done {
		cr.done = true
		cr.err = err
		close(cr.ch)
	}
	cr.mutex.Unlock()
}

// Wait 阻塞直到续行提示完成或被取消。
func (cr *ContinuationRequest) Wait() (string, error) {
	<-cr.ch
	return cr.text, cr.err
}
