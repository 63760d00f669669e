package imap

// SelectOptions 包含 SELECT 或 EXAMINE 命令的选项。
type SelectOptions struct {
	ReadOnly  bool // 是否以只读模式选择邮箱
	CondStore bool // 是否使用条件存储，要求支持 CONDSTORE

	// QResync 启用 QRESYNC（RFC 7162）快速重新同步。要求支持 QRESYNC 扩展。
	QResync *QResyncOptions
}

// QResyncOptions 包含 SELECT/EXAMINE 命令中 QRESYNC 参数（RFC 7162 第 3.2.5 节）。
//
// UIDValidity 和 ModSeq 是必需的，对应客户端上一次已知的 UIDVALIDITY 和
// 修改序列号。KnownUIDs 和 SeqMatch 是可选的优化提示。
type QResyncOptions struct {
	UIDValidity uint32
	ModSeq      uint64
	KnownUIDs   UIDSet

	// SeqMatchData 是可选的 known-sequence-set/known-uid-set 对，
	// 用于帮助服务器压缩 VANISHED 响应。
	SeqMatch *SeqMatchData
}

// SeqMatchData 对应 RFC 7162 的 seq-match-data：一对等长的序号集合和
// UID 集合，按位置一一对应。
type SeqMatchData struct {
	SeqNums SeqSet
	UIDs    UIDSet
}

// SelectData 是 SELECT 命令返回的数据。
//
// 在旧的 RFC 2060 中，PermanentFlags、UIDNext 和 UIDValidity 是可选的。
type SelectData struct {
	// 此邮箱定义的标志
	Flags []Flag // 邮箱的标志集合
	// 客户端可以永久更改的标志
	PermanentFlags []Flag // 客户端可永久更改的标志集合
	// 此邮箱中的邮件数量（即 "EXISTS"）
	NumMessages uint32 // 邮件总数
	UIDNext     UID    // 下一个 UID
	UIDValidity uint32 // UID 有效性

	List *ListData // 返回列表数据，要求支持 IMAP4rev2

	HighestModSeq uint64 // 最高的修改序列号，要求支持 CONDSTORE

	// NoModSeq 为 true 表示服务器在响应码中回复了 NOMODSEQ：此邮箱不支持
	// 持久化的修改序列号，即使服务器通告了 CONDSTORE/QRESYNC 能力。
	NoModSeq bool

	// QResyncEnabled 仅在调用方请求了 QRESYNC 并且服务器确认可以使用它时为
	// true：uidvalidity 与请求时一致、HighestModSeq 非零、且 NoModSeq 为假。
	// 调用方应当只在此字段为 true 时信任 VANISHED 响应替代了逐条 EXPUNGE。
	QResyncEnabled bool
}
