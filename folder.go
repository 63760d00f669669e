package imap

// SpecialUseSource 标识一个 FolderEntry.SpecialUse 值的来源，用于在多个
// 邮箱争抢同一特殊用途标签时按优先级排序：user 优先于 extension，
// extension 优先于 name。
type SpecialUseSource string

const (
	SpecialUseSourceUser      SpecialUseSource = "user"      // 来自调用方提供的 specialUseHints
	SpecialUseSourceExtension SpecialUseSource = "extension" // 来自服务器 SPECIAL-USE/XLIST 标志
	SpecialUseSourceName      SpecialUseSource = "name"      // 来自对邮箱名称的启发式猜测
)

// FolderEntry 是客户端文件夹缓存中的一条记录，由 LIST（以及随后融合的
// LSUB、STATUS）构建。
type FolderEntry struct {
	// Path 是规范化后的邮箱路径，去掉了前导分隔符。
	Path string
	// PathAsListed 是服务器在 LIST 响应里原样给出的邮箱名称（线路形式），
	// 可能经过了 modified UTF-7 之类的编码。
	PathAsListed string
	// ParentPath 是去掉最后一段路径之后剩下的部分；顶层邮箱为空字符串。
	ParentPath string
	// ParentSegments 是 ParentPath 按 Delim 拆分后的各段。
	ParentSegments []string
	// Name 是路径最后一段，即邮箱自身的名称。
	Name string
	// Delim 是服务器为此邮箱报告的层级分隔符，0 表示没有层级结构。
	Delim rune

	// Listed 为真表示这条记录来自某次 LIST 响应本身，而不仅仅是 LSUB
	// 合并进来的订阅信息。
	Listed bool
	// Subscribed 为真表示邮箱已被订阅（来自 LIST 的 \Subscribed 标志，
	// 或者随后合并的 LSUB 结果）。
	Subscribed bool
	// Flags 是服务器为此邮箱报告的全部邮箱属性（mbx-list-flags）。
	Flags []MailboxAttr

	// SpecialUse 是解析后认定的特殊用途标签，零值表示没有特殊用途。
	SpecialUse MailboxAttr
	// SpecialUseSource 说明 SpecialUse 的判定依据。
	SpecialUseSource SpecialUseSource

	// Status 是随 LIST-STATUS 的 RETURN (STATUS ...) 一起内联返回的
	// 状态数据，或者后续单独 STATUS 查询合并进来的结果；nil 表示未知。
	Status *StatusData
}
