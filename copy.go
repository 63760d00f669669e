package imap

// CopyData 是 COPY 命令返回的数据。
type CopyData struct {
	UIDValidity uint32 // UID 的有效性，要求支持 UIDPLUS 或 IMAP4rev2
	SourceUIDs  UIDSet // 源 UID 集，表示被复制邮件的 UID 集合
	DestUIDs    UIDSet // 目标 UID 集，表示复制后邮件在目标邮箱中的 UID 集合
}

// UIDMapping 把 SourceUIDs 和 DestUIDs 展开成等长的数组，并按下标一一对应
// 构建源 UID 到目标 UID 的映射：展开后第 i 个源 UID 对应第 i 个目标 UID。
// COPYUID 响应码本身就保证了这个顺序关系（RFC 4315），这里只是把它从两个
// 编号集合转成调用方可以直接查询的映射表。
//
// 如果两个集合展开后长度不一致，说明服务器返回了不合规的 COPYUID 响应码，
// 返回 ok=false。
func (d *CopyData) UIDMapping() (mapping map[UID]UID, ok bool) {
	srcUIDs, ok := d.SourceUIDs.Nums()
	if !ok {
		return nil, false
	}
	dstUIDs, ok := d.DestUIDs.Nums()
	if !ok {
		return nil, false
	}
	if len(srcUIDs) != len(dstUIDs) {
		return nil, false
	}

	mapping = make(map[UID]UID, len(srcUIDs))
	for i, src := range srcUIDs {
		mapping[src] = dstUIDs[i]
	}
	return mapping, true
}
