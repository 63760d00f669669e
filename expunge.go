package imap

// ExpungeOptions 包含 EXPUNGE 命令过程的选项。
type ExpungeOptions struct {
	// UID 使用 UID EXPUNGE（要求支持 UIDPLUS 或 IMAP4rev2）：只有给定范围内
	// 的 UID 会被清除。否则退化为普通 EXPUNGE，它会清除邮箱中所有带
	// \Deleted 标志的消息，不限于给定范围。
	UID bool
}

// ExpungeData 是 EXPUNGE 命令返回的数据。
type ExpungeData struct {
	// HighestModSeq 是服务器在 EXPUNGE 的 OK 响应中通过 HIGHESTMODSEQ
	// 响应码回报的、执行清除后的最高修改序列号，要求支持 CONDSTORE。
	// 零值表示服务器没有回报。
	HighestModSeq uint64
}
