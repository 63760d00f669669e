package imapclient

// MailboxLock 表示对当前已选邮箱的独占访问权。
//
// 一个连接同一时间只能选择一个邮箱，因此当多个 goroutine 共享同一个
// Client 并都需要依赖“当前选择的邮箱是哪一个”这一假设时（例如连续调用
// Fetch 和 Store 且中途不能被别的 goroutine Select 到别处），必须先
// 获得 MailboxLock。锁在 Close 之前一直持有对邮箱的访问权。
type MailboxLock struct {
	c       *Client
	release chan<- struct{}
}

// Close 释放邮箱锁。
//
// 每个 MailboxLock 只能 Close 一次。
func (l *MailboxLock) Close() {
	if l.release == nil {
		return
	}
	close(l.release)
	l.release = nil
}

// mailboxLocker 是一个 FIFO 的协作式信号量：同一时刻只有一个持有者，
// 等待者按请求顺序排队获得锁，与 Client 用于保护共享状态的 mutex 相似，
// 但粒度更粗，覆盖的是整个“邮箱已选中”这段逻辑时间，而不是单次字段访问。
type mailboxLocker struct {
	ch chan struct{}
}

func newMailboxLocker() *mailboxLocker {
	l := &mailboxLocker{ch: make(chan struct{}, 1)}
	l.ch <- struct{}{}
	return l
}

// Lock 获取邮箱锁，返回的 MailboxLock 必须被 Close。
func (l *mailboxLocker) Lock(c *Client) *MailboxLock {
	<-l.ch
	release := make(chan struct{})
	go func() {
		<-release
		l.ch <- struct{}{}
	}()
	return &MailboxLock{c: c, release: release}
}
