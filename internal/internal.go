// Package internal 提供 imap 与 imapclient 包共享的、不属于公共 API 的
// 辅助函数：日期格式、标志/邮箱属性列表的线路解析，以及 SASL 续行数据
// 的 base64 编解码。
package internal

import (
	"encoding/base64"
	"time"

	"github.com/dahlgren/goimap/internal/imapwire"
)

// DateLayout 是 IMAP date（不含时间）的 time.Parse/time.Format 布局。
const DateLayout = "02-Jan-2006"

// DateTimeLayout 是 IMAP date-time 的 time.Parse/time.Format 布局。
const DateTimeLayout = "02-Jan-2006 15:04:05 -0700"

func isFlagChar(ch byte) bool {
	return ch == '\\' || ch == '*' || imapwire.IsAtomChar(ch)
}

// ExpectFlagList 解析一个括号括起来的、空格分隔的标志列表。
func ExpectFlagList(dec *imapwire.Decoder) ([]string, error) {
	var flags []string
	err := dec.ExpectList(func() error {
		var flag string
		if !dec.Expect(dec.Func(&flag, isFlagChar), "flag") {
			return dec.Err()
		}
		flags = append(flags, flag)
		return nil
	})
	return flags, err
}

// ExpectMailboxAttrList 解析一个括号括起来的、空格分隔的邮箱属性列表。
func ExpectMailboxAttrList(dec *imapwire.Decoder) ([]string, error) {
	return ExpectFlagList(dec)
}

// ExpectDateTime 解析一个带引号的 IMAP date-time 字符串。
func ExpectDateTime(dec *imapwire.Decoder) (time.Time, error) {
	var s string
	if !dec.Expect(dec.ExpectQuoted(&s), "date-time") {
		return time.Time{}, dec.Err()
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// EncodeSASL 将 SASL 续行数据编码为 base64 字符串，空数据编码为 "=".
func EncodeSASL(b []byte) string {
	if len(b) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeSASL 解码一个 base64 编码的 SASL 续行字符串。
func DecodeSASL(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
