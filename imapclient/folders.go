package imapclient

import (
	"sort"
	"strings"

	"github.com/dahlgren/goimap"
)

// ListFoldersOptions 包含 ListFolders 的选项。
type ListFoldersOptions struct {
	// ListOnly 为真时，只运行第一遍 LIST（必要时加上 INBOX 兜底那一次），
	// 不再运行 LSUB 融合，也不再发起 STATUS 查询。
	ListOnly bool
	// StatusQuery 非 nil 时，请求服务器在 LIST 响应里内联返回状态数据
	// （要求 IMAP4rev2 或 LIST-STATUS）。
	StatusQuery *imap.StatusOptions
}

// specialUseOrder 是 FolderEntry 排序时特殊用途邮箱之间的优先顺序。
var specialUseOrder = []imap.MailboxAttr{
	imap.MailboxAttrInbox,
	imap.MailboxAttrFlagged,
	imap.MailboxAttrSent,
	imap.MailboxAttrDrafts,
	imap.MailboxAttrAll,
	imap.MailboxAttrArchive,
	imap.MailboxAttrJunk,
	imap.MailboxAttrTrash,
}

var specialUseRank = func() map[imap.MailboxAttr]int {
	m := make(map[imap.MailboxAttr]int, len(specialUseOrder))
	for i, attr := range specialUseOrder {
		m[attr] = i
	}
	return m
}()

// extensionSpecialUseAttrs 是服务器可能通过 SPECIAL-USE/XLIST 标志宣告的
// 特殊用途属性，即 specialUseAttrs（list.go）加上 \Inbox。
var extensionSpecialUseAttrs = map[imap.MailboxAttr]struct{}{
	imap.MailboxAttrAll:     {},
	imap.MailboxAttrArchive: {},
	imap.MailboxAttrDrafts:  {},
	imap.MailboxAttrFlagged: {},
	imap.MailboxAttrJunk:    {},
	imap.MailboxAttrSent:    {},
	imap.MailboxAttrTrash:   {},
	imap.MailboxAttrInbox:   {},
}

// nameSpecialUseHeuristics 把常见语言里邮箱的本地化名称映射到特殊用途
// 属性，在服务器既没有 SPECIAL-USE/XLIST 标志、调用方也没有提供
// specialUseHints 时作为最后的兜底。键是小写的邮箱叶子名称。
var nameSpecialUseHeuristics = map[string]imap.MailboxAttr{
	"sent":              imap.MailboxAttrSent,
	"sent items":        imap.MailboxAttrSent,
	"sent messages":     imap.MailboxAttrSent,
	"gesendet":          imap.MailboxAttrSent,
	"gesendete objekte": imap.MailboxAttrSent,
	"envoyés":           imap.MailboxAttrSent,
	"éléments envoyés":  imap.MailboxAttrSent,

	"trash":          imap.MailboxAttrTrash,
	"deleted items":  imap.MailboxAttrTrash,
	"deleted":        imap.MailboxAttrTrash,
	"papierkorb":     imap.MailboxAttrTrash,
	"corbeille":      imap.MailboxAttrTrash,

	"junk":        imap.MailboxAttrJunk,
	"spam":        imap.MailboxAttrJunk,
	"junk e-mail": imap.MailboxAttrJunk,
	"bulk mail":   imap.MailboxAttrJunk,

	"drafts":   imap.MailboxAttrDrafts,
	"draft":    imap.MailboxAttrDrafts,
	"entwurf":  imap.MailboxAttrDrafts,
	"entwürfe": imap.MailboxAttrDrafts,
	"brouillons": imap.MailboxAttrDrafts,

	"archive":  imap.MailboxAttrArchive,
	"archives": imap.MailboxAttrArchive,
	"archiv":   imap.MailboxAttrArchive,

	"all mail": imap.MailboxAttrAll,
}

// nameSpecialUseSubstrings 是 nameSpecialUseHeuristics 精确匹配失败时，
// 按子串匹配兜底用的、与具体语言无关的关键字。
var nameSpecialUseSubstrings = []struct {
	substr string
	attr   imap.MailboxAttr
}{
	{"sent", imap.MailboxAttrSent},
	{"trash", imap.MailboxAttrTrash},
	{"papierkorb", imap.MailboxAttrTrash},
	{"junk", imap.MailboxAttrJunk},
	{"spam", imap.MailboxAttrJunk},
	{"draft", imap.MailboxAttrDrafts},
	{"entwurf", imap.MailboxAttrDrafts},
	{"archiv", imap.MailboxAttrArchive},
}

// sourcePriority 把 SPECIAL-USE 来源映射为排序权重，user < extension < name。
func sourcePriority(source imap.SpecialUseSource) int {
	switch source {
	case imap.SpecialUseSourceUser:
		return 0
	case imap.SpecialUseSourceExtension:
		return 1
	default:
		return 2
	}
}

// ListFolders 实现完整的 LIST 命令过程：按需选择 LIST 或 XLIST、按需附加
// LIST-STATUS 的 RETURN 子句、从服务器标志/用户提示/名称启发式三个来源
// 解析并仲裁每个邮箱的 SPECIAL-USE 标签、在引用非空且未见 \Inbox 时追加
// 一次 INBOX 兜底查询、融合 LSUB 的订阅信息、最终按特殊用途优先级排序。
//
// 结果会替换客户端的文件夹缓存（Client.Folder 可查询）。
func (c *Client) ListFolders(ref, pattern string, options *ListFoldersOptions) ([]*imap.FolderEntry, error) {
	if options == nil {
		options = &ListFoldersOptions{}
	}

	caps := c.Caps()
	hasSpecialUse := caps.Has(imap.CapSpecialUse)
	useXList := caps.Has(imap.CapXList) && !hasSpecialUse
	hasListExtended := caps.Has(imap.CapListExtended) || caps.Has(imap.CapIMAP4rev2)

	listOpts := &imap.ListOptions{
		ReturnSubscribed: hasListExtended,
		ReturnSpecialUse: hasListExtended && hasSpecialUse,
	}
	if options.StatusQuery != nil && (caps.Has(imap.CapIMAP4rev2) || caps.Has(imap.CapListStatus)) {
		listOpts.ReturnStatus = options.StatusQuery
	}

	cmdName := "LIST"
	if useXList {
		cmdName = "XLIST"
	}

	byPath := make(map[string]*imap.FolderEntry)
	var order []string
	sawInbox := false

	collect := func(datas []*imap.ListData) {
		for _, data := range datas {
			entry := c.buildFolderEntry(data)
			if strings.EqualFold(entry.Path, "INBOX") {
				sawInbox = true
			}
			if _, exists := byPath[entry.Path]; !exists {
				order = append(order, entry.Path)
			}
			byPath[entry.Path] = entry
		}
	}

	datas, err := c.listWithName(cmdName, ref, pattern, listOpts).Collect()
	if err != nil {
		return nil, err
	}
	collect(datas)

	if ref != "" && !sawInbox {
		inboxDatas, err := c.listWithName(cmdName, "", "INBOX", listOpts).Collect()
		if err == nil {
			collect(inboxDatas)
		}
	}

	if !options.ListOnly {
		lsubDatas, err := c.LSub(ref, pattern).Collect()
		if err == nil {
			for _, data := range lsubDatas {
				path := normalizeFolderPath(data.Mailbox, data.Delim)
				entry, ok := byPath[path]
				if !ok {
					continue // LSUB 不会新增条目，只合并进已存在的记录
				}
				entry.Subscribed = true
				entry.Flags = mergeMailboxAttrs(entry.Flags, data.Attrs)
			}
		}
	}

	entries := make([]*imap.FolderEntry, len(order))
	for i, path := range order {
		entries[i] = byPath[path]
	}

	c.applyUserSpecialUseHints(entries)
	resolveSpecialUseConflicts(entries)

	if inbox, ok := byPath["INBOX"]; ok {
		inbox.Subscribed = true
	}

	sortFolderEntries(entries)

	c.storeFolders(entries)
	return entries, nil
}

// buildFolderEntry 把一条 LIST/XLIST 的 imap.ListData 转换为 FolderEntry，
// 提取路径、层级分隔符、父路径/段，并登记 extension/name 两个来源的
// SPECIAL-USE 候选（user 来源在 resolveSpecialUseConflicts 之前单独登记，
// 见 ListFolders 的调用方通过 c.options.SpecialUseHints）。
func (c *Client) buildFolderEntry(data *imap.ListData) *imap.FolderEntry {
	path := normalizeFolderPath(data.Mailbox, data.Delim)
	parentPath, segments, name := splitFolderPath(path, data.Delim)

	entry := &imap.FolderEntry{
		Path:           path,
		PathAsListed:   data.Mailbox,
		ParentPath:     parentPath,
		ParentSegments: segments,
		Name:           name,
		Delim:          data.Delim,
		Listed:         true,
		Flags:          data.Attrs,
		Status:         data.Status,
	}
	for _, attr := range data.Attrs {
		if attr == imap.MailboxAttrSubscribed {
			entry.Subscribed = true
		}
	}

	if strings.EqualFold(path, "INBOX") {
		entry.SpecialUse = imap.MailboxAttrInbox
		entry.SpecialUseSource = imap.SpecialUseSourceExtension
		return entry
	}

	for _, attr := range data.Attrs {
		if _, ok := extensionSpecialUseAttrs[attr]; ok {
			entry.SpecialUse = attr
			entry.SpecialUseSource = imap.SpecialUseSourceExtension
			break
		}
	}
	if entry.SpecialUse == "" {
		if attr, ok := guessSpecialUseFromName(name); ok {
			entry.SpecialUse = attr
			entry.SpecialUseSource = imap.SpecialUseSourceName
		}
	}

	return entry
}

// guessSpecialUseFromName 按本地化名称表猜测邮箱的特殊用途。
func guessSpecialUseFromName(name string) (imap.MailboxAttr, bool) {
	lower := strings.ToLower(name)
	if attr, ok := nameSpecialUseHeuristics[lower]; ok {
		return attr, true
	}
	for _, candidate := range nameSpecialUseSubstrings {
		if strings.Contains(lower, candidate.substr) {
			return candidate.attr, true
		}
	}
	return "", false
}

// normalizeFolderPath 去掉邮箱名称前导的分隔符。
func normalizeFolderPath(mailbox string, delim rune) string {
	if delim == 0 {
		return mailbox
	}
	return strings.TrimPrefix(mailbox, string(delim))
}

// splitFolderPath 把规范化路径拆成父路径、父路径各段、叶子名称。
func splitFolderPath(path string, delim rune) (parentPath string, segments []string, name string) {
	if delim == 0 {
		return "", nil, path
	}
	parts := strings.Split(path, string(delim))
	name = parts[len(parts)-1]
	segments = parts[:len(parts)-1]
	parentPath = strings.Join(segments, string(delim))
	return parentPath, segments, name
}

// mergeMailboxAttrs 把 extra 中尚未出现在 base 里的属性追加进去。
func mergeMailboxAttrs(base, extra []imap.MailboxAttr) []imap.MailboxAttr {
	have := make(map[imap.MailboxAttr]struct{}, len(base))
	for _, attr := range base {
		have[attr] = struct{}{}
	}
	for _, attr := range extra {
		if _, ok := have[attr]; !ok {
			base = append(base, attr)
			have[attr] = struct{}{}
		}
	}
	return base
}

// applyUserSpecialUseHints 用调用方提供的 specialUseHints 登记 user 来源的
// SPECIAL-USE 候选，优先级最高，在仲裁阶段总是赢过 extension/name。
func (c *Client) applyUserSpecialUseHints(entries []*imap.FolderEntry) {
	hints := c.options.SpecialUseHints
	if len(hints) == 0 {
		return
	}
	for _, entry := range entries {
		hint, ok := hints[entry.Path]
		if !ok {
			continue
		}
		entry.SpecialUse = imap.MailboxAttr(hint)
		entry.SpecialUseSource = imap.SpecialUseSourceUser
	}
}

// resolveSpecialUseConflicts 对每一种特殊用途类型，在所有候选条目里按
// (来源优先级, 路径字典序) 排序，只把该类型赋给排序最靠前的那一个，
// 其余的候选被撤销（SpecialUse 清空），避免两个邮箱共享同一个标签。
func resolveSpecialUseConflicts(entries []*imap.FolderEntry) {
	// user 提示先单独应用一遍：它可能把某个邮箱的 SPECIAL-USE 改写成与
	// extension/name 来源不同的类型，必须先落地才能正确分组仲裁。
	byAttr := make(map[imap.MailboxAttr][]*imap.FolderEntry)
	for _, entry := range entries {
		if entry.SpecialUse == "" {
			continue
		}
		byAttr[entry.SpecialUse] = append(byAttr[entry.SpecialUse], entry)
	}

	for attr, candidates := range byAttr {
		if len(candidates) <= 1 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			pi, pj := sourcePriority(candidates[i].SpecialUseSource), sourcePriority(candidates[j].SpecialUseSource)
			if pi != pj {
				return pi < pj
			}
			return candidates[i].Path < candidates[j].Path
		})
		for _, loser := range candidates[1:] {
			if loser.SpecialUse == attr {
				loser.SpecialUse = ""
				loser.SpecialUseSource = ""
			}
		}
	}
}

// sortFolderEntries 把带特殊用途的条目排在前面，按 specialUseOrder 排序，
// 其余条目按父路径各段的字典序排列在后面。
func sortFolderEntries(entries []*imap.FolderEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		ra, aok := specialUseRank[a.SpecialUse]
		rb, bok := specialUseRank[b.SpecialUse]
		if aok && bok {
			return ra < rb
		}
		if aok != bok {
			return aok
		}
		return lessParentSegments(a.ParentSegments, b.ParentSegments) ||
			(equalParentSegments(a.ParentSegments, b.ParentSegments) && a.Name < b.Name)
	})
}

func lessParentSegments(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func equalParentSegments(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
