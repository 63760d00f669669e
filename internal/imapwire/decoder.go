package imapwire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dahlgren/goimap"
	"github.com/dahlgren/goimap/internal/imapnum"
)

// Decoder 从底层的 bufio.Reader 中解析 IMAP 线路语法的各种记号。
//
// 大多数方法分为两类：非 Expect 前缀的方法尽力而为地解析一个可选的记号，
// 解析失败不会设置错误；Expect 前缀的方法要求记号必须存在，解析失败会
// 通过 dec.Err() 记录错误并让后续所有 Expect 调用短路返回 false。
type Decoder struct {
	r    *bufio.Reader
	side ConnSide

	err error

	// literal 为非 nil 时表示当前正在读取一个文字串的内容。
	literal    io.Reader
	literalLen int64
}

// NewDecoder 创建一个新的 Decoder，从 r 中读取，side 指明本端在连接中的角色。
func NewDecoder(r *bufio.Reader, side ConnSide) *Decoder {
	return &Decoder{r: r, side: side}
}

// Err 返回第一个遇到的解码错误（如果有）。
func (dec *Decoder) Err() error {
	return dec.err
}

func (dec *Decoder) setErr(err error) {
	if dec.err == nil {
		dec.err = err
	}
}

// EOF 报告底层读取器是否已经到达流的末尾。
func (dec *Decoder) EOF() bool {
	_, err := dec.r.Peek(1)
	return err == io.EOF
}

func (dec *Decoder) readByte() (byte, error) {
	if dec.err != nil {
		return 0, dec.err
	}
	b, err := dec.r.ReadByte()
	if err != nil {
		dec.setErr(err)
		return 0, err
	}
	return b, nil
}

func (dec *Decoder) peekByte() (byte, error) {
	if dec.err != nil {
		return 0, dec.err
	}
	b, err := dec.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Expect 在 ok 为 false 时记录一个带有 name 的协议错误，并总是返回 ok。
func (dec *Decoder) Expect(ok bool, name string) bool {
	if !ok {
		dec.setErr(fmt.Errorf("imapwire: 期望 %v", name))
	}
	return ok
}

// SP 尝试消费一个空格。
func (dec *Decoder) SP() bool {
	if dec.err != nil {
		return false
	}
	b, err := dec.peekByte()
	if err != nil || b != ' ' {
		return false
	}
	dec.r.Discard(1)
	return true
}

// ExpectSP 要求消费一个空格。
func (dec *Decoder) ExpectSP() bool {
	return dec.Expect(dec.SP(), "空格")
}

// Special 尝试消费字节 b（一个单字符的特殊符号，如 '(' 或 ')'）。
func (dec *Decoder) Special(b byte) bool {
	if dec.err != nil {
		return false
	}
	got, err := dec.peekByte()
	if err != nil || got != b {
		return false
	}
	dec.r.Discard(1)
	return true
}

// ExpectSpecial 要求消费字节 b。
func (dec *Decoder) ExpectSpecial(b byte) bool {
	return dec.Expect(dec.Special(b), fmt.Sprintf("'%c'", b))
}

// ExpectCRLF 要求消费一个 CRLF 行结束符。
func (dec *Decoder) ExpectCRLF() bool {
	if dec.err != nil {
		return false
	}
	cr, err := dec.readByte()
	if err != nil || cr != '\r' {
		dec.setErr(fmt.Errorf("imapwire: 期望 CRLF"))
		return false
	}
	lf, err := dec.readByte()
	if err != nil || lf != '\n' {
		dec.setErr(fmt.Errorf("imapwire: 期望 CRLF"))
		return false
	}
	return true
}

// Func 消费满足 valid 的连续字节，写入 *s，返回是否读到至少一个字节。
func (dec *Decoder) Func(s *string, valid func(byte) bool) bool {
	if dec.err != nil {
		return false
	}
	var sb strings.Builder
	for {
		b, err := dec.peekByte()
		if err != nil || !valid(b) {
			break
		}
		dec.r.Discard(1)
		sb.WriteByte(b)
	}
	if sb.Len() == 0 {
		return false
	}
	*s = sb.String()
	return true
}

// Atom 尝试消费一个 IMAP atom。
func (dec *Decoder) Atom(s *string) bool {
	return dec.Func(s, IsAtomChar)
}

// ExpectAtom 要求消费一个 atom。
func (dec *Decoder) ExpectAtom(s *string) bool {
	return dec.Expect(dec.Atom(s), "atom")
}

// Text 消费直到行尾的文本（不含 CRLF）。
func (dec *Decoder) Text(s *string) bool {
	return dec.Func(s, isTextChar)
}

// ExpectText 要求消费文本。
func (dec *Decoder) ExpectText(s *string) bool {
	return dec.Expect(dec.Text(s), "text")
}

// Quoted 尝试消费一个带引号的字符串。
func (dec *Decoder) Quoted(s *string) bool {
	if dec.err != nil {
		return false
	}
	if !dec.Special('"') {
		return false
	}

	var sb strings.Builder
	for {
		b, err := dec.readByte()
		if err != nil {
			dec.setErr(fmt.Errorf("imapwire: 未结束的带引号字符串"))
			return false
		}
		if b == '"' {
			break
		}
		if b == '\\' {
			b, err = dec.readByte()
			if err != nil {
				dec.setErr(fmt.Errorf("imapwire: 未结束的带引号字符串"))
				return false
			}
		}
		sb.WriteByte(b)
	}
	*s = sb.String()
	return true
}

// ExpectQuoted 要求消费一个带引号的字符串。
func (dec *Decoder) ExpectQuoted(s *string) bool {
	return dec.Expect(dec.Quoted(s), "quoted string")
}

// Literal 尝试消费一个文字串的前导部分（{N} 或 {N+}），并返回一个读取文字串
// 内容的 Reader。如果当前位置不是文字串，返回的 ok 为 false。
func (dec *Decoder) Literal() (lit LiteralReader, nonSync bool, ok bool) {
	if dec.err != nil {
		return nil, false, false
	}
	if !dec.Special('{') {
		return nil, false, false
	}

	var numStr string
	if !dec.Expect(dec.Func(&numStr, isDigit), "文字串长度") {
		return nil, false, false
	}
	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		dec.setErr(fmt.Errorf("imapwire: 无效的文字串长度: %v", err))
		return nil, false, false
	}

	nonSync = dec.Special('+')
	if !dec.ExpectSpecial('}') || !dec.ExpectCRLF() {
		return nil, false, false
	}

	r := &literalReader{dec: dec, size: num}
	dec.literal = r
	dec.literalLen = num
	return r, nonSync, true
}

// literalReader 暴露一个文字串内容的 io.Reader。
type literalReader struct {
	dec  *Decoder
	size int64
	off  int64
}

func (lr *literalReader) Size() int64 { return lr.size }

func (lr *literalReader) Read(b []byte) (int, error) {
	if lr.off >= lr.size {
		return 0, io.EOF
	}
	if want := lr.size - lr.off; int64(len(b)) > want {
		b = b[:want]
	}
	n, err := lr.dec.r.Read(b)
	lr.off += int64(n)
	if lr.off >= lr.size && lr.dec.literal == lr {
		lr.dec.literal = nil
	}
	return n, err
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// String 尝试消费一个带引号的字符串或文字串，返回结果字符串。
func (dec *Decoder) String(s *string) bool {
	if dec.Quoted(s) {
		return true
	}
	lit, _, ok := dec.Literal()
	if !ok {
		return false
	}
	b, err := io.ReadAll(lit)
	if err != nil {
		dec.setErr(err)
		return false
	}
	*s = string(b)
	return true
}

// ExpectString 要求消费一个字符串（带引号或文字串）。
func (dec *Decoder) ExpectString(s *string) bool {
	return dec.Expect(dec.String(s), "string")
}

// ExpectAString 要求消费一个 astring（atom 或字符串）。
func (dec *Decoder) ExpectAString(s *string) bool {
	if dec.Atom(s) {
		return true
	}
	return dec.Expect(dec.String(s), "astring")
}

// ExpectNString 要求消费一个 nstring：NIL 或字符串。
func (dec *Decoder) ExpectNString(s *string) bool {
	if dec.NIL() {
		*s = ""
		return true
	}
	return dec.ExpectString(s)
}

// ExpectNStringReader 要求消费一个 nstring，返回值为 nil（NIL 的情况）或
// 文字串/带引号字符串内容的 Reader。
func (dec *Decoder) ExpectNStringReader() (lit LiteralReader, isNil bool, ok bool) {
	if dec.NIL() {
		return nil, true, true
	}
	if l, _, litOK := dec.Literal(); litOK {
		return l, false, true
	}
	var s string
	if !dec.ExpectQuoted(&s) {
		return nil, false, false
	}
	return &stringLiteralReader{s: s}, false, true
}

type stringLiteralReader struct {
	s   string
	off int
}

func (r *stringLiteralReader) Size() int64 { return int64(len(r.s)) }

func (r *stringLiteralReader) Read(b []byte) (int, error) {
	if r.off >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(b, r.s[r.off:])
	r.off += n
	return n, nil
}

// NIL 尝试消费字面量 "NIL"。
func (dec *Decoder) NIL() bool {
	return dec.matchCaseInsensitive("NIL")
}

// ExpectNIL 要求消费 "NIL"。
func (dec *Decoder) ExpectNIL() bool {
	return dec.Expect(dec.NIL(), "NIL")
}

func (dec *Decoder) matchCaseInsensitive(word string) bool {
	if dec.err != nil {
		return false
	}
	peek, err := dec.r.Peek(len(word))
	if err != nil || !strings.EqualFold(string(peek), word) {
		return false
	}
	dec.r.Discard(len(word))
	return true
}

// Number 尝试消费一个十进制数字（最多 32 位）。
func (dec *Decoder) Number(num *uint32) bool {
	var s string
	if !dec.Func(&s, isDigit) {
		return false
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		dec.setErr(fmt.Errorf("imapwire: 无效的数字: %v", err))
		return false
	}
	*num = uint32(n)
	return true
}

// ExpectNumber 要求消费一个数字。
func (dec *Decoder) ExpectNumber(num *uint32) bool {
	return dec.Expect(dec.Number(num), "number")
}

// ExpectNumber64 要求消费一个 64 位数字。
func (dec *Decoder) ExpectNumber64(num *int64) bool {
	var s string
	if !dec.Expect(dec.Func(&s, isDigit), "number64") {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		dec.setErr(fmt.Errorf("imapwire: 无效的 64 位数字: %v", err))
		return false
	}
	*num = n
	return true
}

// ExpectModSeq 要求消费一个 mod-sequence-value（64 位无符号数）。
func (dec *Decoder) ExpectModSeq(modSeq *uint64) bool {
	var s string
	if !dec.Expect(dec.Func(&s, isDigit), "mod-sequence-value") {
		return false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		dec.setErr(fmt.Errorf("imapwire: 无效的修改序列号: %v", err))
		return false
	}
	*modSeq = n
	return true
}

// ExpectUID 要求消费一个 UID（32 位数字）。
func (dec *Decoder) ExpectUID(uid *imap.UID) bool {
	var num uint32
	if !dec.ExpectNumber(&num) {
		return false
	}
	*uid = imap.UID(num)
	return true
}

// ExpectBodyFldOctets 要求消费 body 结构中的八位字节数字段。
func (dec *Decoder) ExpectBodyFldOctets(n *uint32) bool {
	return dec.ExpectNumber(n)
}

// ExpectNumSet 要求消费一个序列集，返回 imap.SeqSet 或 imap.UIDSet（取决于
// kind）。
func (dec *Decoder) ExpectNumSet(kind NumKind, numSet *imap.NumSet) bool {
	var s string
	if !dec.Expect(dec.Func(&s, isSeqSetChar), "sequence-set") {
		return false
	}
	set, err := imapnum.Parse(s)
	if err != nil {
		dec.setErr(err)
		return false
	}
	if kind == NumKindUID {
		*numSet = imap.UIDSetFromNums(set)
	} else {
		*numSet = imap.SeqSetFromNums(set)
	}
	return true
}

// ExpectUIDSet 要求消费一个 UID 集合。
func (dec *Decoder) ExpectUIDSet(uidSet *imap.UIDSet) bool {
	var numSet imap.NumSet
	if !dec.ExpectNumSet(NumKindUID, &numSet) {
		return false
	}
	set, ok := numSet.(imap.UIDSet)
	if !ok {
		dec.setErr(fmt.Errorf("imapwire: 期望 UID 集合"))
		return false
	}
	*uidSet = set
	return true
}

func isSeqSetChar(b byte) bool {
	return isDigit(b) || b == ':' || b == ',' || b == '*'
}

// Mailbox 尝试消费一个邮箱名称（astring），按 modified UTF-7 解码，并对
// "INBOX" 做大小写无关处理。
func (dec *Decoder) Mailbox(name *string) bool {
	var s string
	if !dec.ExpectAString(&s) {
		return false
	}
	if strings.EqualFold(s, "INBOX") {
		s = "INBOX"
	}
	*name = decodeMailboxName(s)
	return true
}

// ExpectMailbox 要求消费一个邮箱名称。
func (dec *Decoder) ExpectMailbox(name *string) bool {
	return dec.Expect(dec.Mailbox(name), "mailbox")
}

// List 尝试消费一个括号列表，对每个元素调用 f。
func (dec *Decoder) List(f func() error) (bool, error) {
	if !dec.Special('(') {
		return false, nil
	}
	first := true
	for {
		if dec.Special(')') {
			break
		}
		if !first {
			if !dec.ExpectSP() {
				return true, dec.err
			}
		}
		first = false
		if err := f(); err != nil {
			return true, err
		}
	}
	return true, nil
}

// ExpectList 要求消费一个括号列表。
func (dec *Decoder) ExpectList(f func() error) error {
	ok, err := dec.List(f)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("imapwire: 期望列表")
	}
	return nil
}

// ExpectNList 要求消费一个括号列表或 NIL。
func (dec *Decoder) ExpectNList(f func() error) error {
	if dec.NIL() {
		return nil
	}
	return dec.ExpectList(f)
}

// DiscardValue 丢弃接下来的一个通用 IMAP 值（原子、字符串、文字串、数字
// 或括号列表），用于跳过尚不理解的响应数据。
func (dec *Decoder) DiscardValue() bool {
	if dec.err != nil {
		return false
	}

	b, err := dec.peekByte()
	if err != nil {
		return false
	}

	switch {
	case b == '(':
		err := dec.ExpectList(func() error {
			if !dec.DiscardValue() {
				return dec.Err()
			}
			return nil
		})
		return err == nil
	case b == '"':
		var s string
		return dec.Quoted(&s)
	case b == '{':
		lit, _, ok := dec.Literal()
		if !ok {
			return false
		}
		_, err := io.Copy(io.Discard, lit)
		return err == nil
	default:
		var s string
		return dec.Func(&s, IsAtomChar)
	}
}

// DiscardUntilByte 丢弃字节直到（但不包括）第一次出现的 b。
func (dec *Decoder) DiscardUntilByte(b byte) {
	for {
		got, err := dec.peekByte()
		if err != nil || got == b {
			return
		}
		dec.r.Discard(1)
	}
}
