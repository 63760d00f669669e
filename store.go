package imap

import "strings"

// canonicalFlags 把系统标志的大小写变体映射到规范形式（标题大小写），
// 键为小写形式。非系统标志不经过这张表，原样透传。
var canonicalFlags = map[string]Flag{
	strings.ToLower(string(FlagSeen)):     FlagSeen,
	strings.ToLower(string(FlagAnswered)): FlagAnswered,
	strings.ToLower(string(FlagFlagged)):  FlagFlagged,
	strings.ToLower(string(FlagDeleted)):  FlagDeleted,
	strings.ToLower(string(FlagDraft)):    FlagDraft,
}

// NormalizeFlag 把系统标志规范化为标题大小写形式（例如 "\SEEN" 归一化为
// "\Seen"），非系统标志原样返回。
func NormalizeFlag(flag Flag) Flag {
	if canonical, ok := canonicalFlags[strings.ToLower(string(flag))]; ok {
		return canonical
	}
	return flag
}

// CanUseFlag 报告客户端是否可以在给定邮箱的永久标志集合下对消息设置或
// 清除 flag。permanentFlags 为空（服务器未声明）、包含通配符 \*，或
// 显式包含 flag 本身时返回 true；\Recent 由服务器维护，始终返回 false。
func CanUseFlag(permanentFlags []Flag, flag Flag) bool {
	if flag == FlagRecent {
		return false
	}
	if len(permanentFlags) == 0 {
		return true
	}
	for _, f := range permanentFlags {
		if f == FlagWildcard || f == flag {
			return true
		}
	}
	return false
}

// StoreOptions 包含 STORE 命令的选项。
type StoreOptions struct {
	UnchangedSince uint64 // 要求 CONDSTORE
}

// StoreFlagsOp 是标志操作：设置、添加或删除。
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota // 设置标志
	StoreFlagsAdd                     // 添加标志
	StoreFlagsDel                     // 删除标志
)

// StoreFlags 修改消息标志。
type StoreFlags struct {
	Op     StoreFlagsOp // 操作类型
	Silent bool         // 是否静默操作
	Flags  []Flag       // 要修改的标志
}
