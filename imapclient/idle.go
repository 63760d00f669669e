package imapclient

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dahlgren/goimap"
)

// defaultNoopInterval 是在服务器不支持 IDLE 时，NOOP 轮询回退之间的默认
// 间隔，调用方可以通过 Options.NoopInterval 覆盖。
const defaultNoopInterval = 2 * time.Minute

// Idle 发送 IDLE 命令（RFC 2177），请求服务器在连接空闲时主动推送单方面数据。
//
// 与其他命令不同，此方法会阻塞，直到命令被服务器确认（或者，在服务器不
// 支持 IDLE 时，直到 NOOP 回退轮询启动）。成功后，调用者必须调用
// IdleCommand.Close 来停止 IDLE 并允许客户端发送其他命令。
//
// 调用者不需要在发送其他命令之前手动调用 Close：beginCommand 会通过
// preCheck 钩子自动结束正在进行的 IDLE。
//
// 如果服务器没有宣告 IDLE 或 IMAP4rev2 能力，Idle 不会返回错误，而是
// 退化为定期发送 NOOP 命令，这同样会让服务器有机会推送单方面数据，
// 只是延迟更高。
func (c *Client) Idle() (*IdleCommand, error) {
	cmd := &IdleCommand{
		c:    c,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	if !c.Caps().Has(imap.CapIdle) {
		go cmd.runNoop()
	} else {
		child, err := c.idle()
		if err != nil {
			return nil, err
		}
		go cmd.runIdle(child)
	}

	c.setPreCheck(cmd.autoStop)
	return cmd, nil
}

// IdleCommand 表示一次正在进行的 IDLE（或 NOOP 回退轮询）。
//
// 在其运行期间，服务器可能会发送单方面数据；客户端无法通过同一个
// Client 发送其他命令，除非先 Close 这个 IdleCommand，或者直接发送
// 其他命令触发自动结束。
type IdleCommand struct {
	c       *Client
	stopped atomic.Bool
	stop    chan struct{}
	done    chan struct{}

	err       error
	lastChild *idleCommand // 仅当使用真正的 IDLE 时有效
}

// autoStop 由 Client.beginCommand 通过 preCheck 钩子调用：在发送下一条
// 命令之前结束本次 IDLE。这是 Close 的幂等版本,可以安全地被调用任意次。
func (cmd *IdleCommand) autoStop() error {
	if cmd.stopped.Load() {
		return nil
	}
	return cmd.Close()
}

// runIdle 运行真正的 IDLE 命令,每到 idleRestartInterval 就重启一次,
// 避免服务器因连接空闲超时而主动断开。
func (cmd *IdleCommand) runIdle(child *idleCommand) {
	defer close(cmd.done)

	const idleRestartInterval = 28 * time.Minute
	timer := time.NewTimer(idleRestartInterval)
	defer timer.Stop()

	defer func() {
		if child != nil {
			if err := child.Close(); err != nil && cmd.err == nil {
				cmd.err = err
			}
		}
	}()

	for {
		select {
		case <-timer.C:
			timer.Reset(idleRestartInterval)

			if cmd.err = child.Close(); cmd.err != nil {
				return
			}
			if child, cmd.err = cmd.c.idle(); cmd.err != nil {
				return
			}
		case <-cmd.c.decCh:
			cmd.lastChild = child
			return
		case <-cmd.stop:
			cmd.lastChild = child
			return
		}
	}
}

// runNoop 实现服务器不支持 IDLE 时的回退:定期发送 NOOP,给服务器一个
// 推送单方面数据的机会。
func (cmd *IdleCommand) runNoop() {
	defer close(cmd.done)

	ticker := time.NewTicker(cmd.c.options.noopInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// 清空 preCheck，避免 Noop 触发的 beginCommand 把自己当成
			// 需要被打断的命令而递归调用 autoStop。
			cmd.c.setPreCheck(nil)
			err := cmd.c.Noop().Wait()
			if cmd.stopped.Load() {
				return
			}
			if err != nil {
				cmd.err = err
				return
			}
			cmd.c.setPreCheck(cmd.autoStop)
		case <-cmd.c.decCh:
			return
		case <-cmd.stop:
			return
		}
	}
}

// Close 停止 IDLE（或 NOOP 回退轮询）。
//
// 此方法会阻塞，直到停止命令被写入，但不等待服务器的响应。
// 调用者可以使用 Wait 来等待服务器响应。
func (cmd *IdleCommand) Close() error {
	if cmd.stopped.Swap(true) {
		return fmt.Errorf("imapclient: IDLE 已经关闭")
	}
	close(cmd.stop)
	<-cmd.done
	return cmd.err
}

// Wait 阻塞直到 IDLE 命令完成。
func (cmd *IdleCommand) Wait() error {
	<-cmd.done
	if cmd.err != nil {
		return cmd.err
	}
	if cmd.lastChild != nil {
		return cmd.lastChild.Wait()
	}
	return nil
}

// idle 发送 IDLE 命令并返回命令句柄。
func (c *Client) idle() (*idleCommand, error) {
	cmd := &idleCommand{}
	contReq := c.registerContReq(cmd)     // 注册连续请求
	cmd.enc = c.beginCommand("IDLE", cmd) // 开始 IDLE 命令
	cmd.enc.flush()                       // 刷新编码器

	_, err := contReq.Wait() // 等待连续请求完成
	if err != nil {
		cmd.enc.end() // 结束编码
		return nil, err
	}

	return cmd, nil
}

// idleCommand 表示一个单独的 IDLE 命令，没有重启逻辑。
type idleCommand struct {
	commandBase
	enc *commandEncoder // 编码器
}

// Close 停止 IDLE 命令。
//
// 此方法会阻塞，直到停止 IDLE 的命令被写入，但不等待服务器的响应。
// 调用者可以使用 Wait 来等待服务器响应。
func (cmd *idleCommand) Close() error {
	if cmd.err != nil {
		return cmd.err // 如果已有错误，返回错误
	}
	if cmd.enc == nil {
		return fmt.Errorf("imapclient: IDLE 命令被关闭两次")
	}
	cmd.enc.client.setWriteTimeout(cmdWriteTimeout)     // 设置写入超时
	_, err := cmd.enc.client.bw.WriteString("DONE\r\n") // 发送 DONE 命令
	if err == nil {
		err = cmd.enc.client.bw.Flush() // 刷新缓冲区
	}
	cmd.enc.end() // 结束编码
	cmd.enc = nil // 清空编码器
	return err
}

// Wait 阻塞直到 IDLE 命令完成。
//
// Wait 只能在 Close 之后调用。
func (cmd *idleCommand) Wait() error {
	if cmd.enc != nil {
		panic("imapclient: idleCommand.Close 必须在 Wait 之前调用")
	}
	return cmd.wait() // 等待命令完成
}
