package imapclient

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/flate"
)

// Compress 发送一个 COMPRESS 命令（RFC 4978），请求在连接上启用 DEFLATE 压缩。
//
// 与大多数其他命令不同，此方法会阻塞直到命令完成：压缩必须在继续发送任何
// 后续命令之前在连接两端同时启用，否则客户端和服务器会对字节流的解释产生分歧。
func (c *Client) Compress() error {
	upgradeDone := make(chan struct{})
	cmd := &compressCommand{upgradeDone: upgradeDone}
	enc := c.beginCommand("COMPRESS", cmd)
	enc.SP().Atom("DEFLATE")
	enc.end()

	if err := cmd.wait(); err != nil {
		return err
	}

	// 解码器的 goroutine 会调用 Client.upgradeCompress
	<-upgradeDone
	return nil
}

// upgradeCompress 在服务器确认 COMPRESS 命令后，将连接两端都切换到 DEFLATE
// 压缩。它在解码器 goroutine 中运行。
func (c *Client) upgradeCompress(cmd *compressCommand) {
	defer close(cmd.upgradeDone)

	rw := c.options.wrapReadWriter(c.conn)
	c.br.Reset(flate.NewReader(rw))

	fw, err := flate.NewWriter(rw, flate.DefaultCompression)
	if err != nil {
		// DefaultCompression 总是合法的压缩级别，不会发生这种情况
		panic(err)
	}
	c.bw = bufio.NewWriter(&flushingWriter{fw})
}

// flushingWriter 在每次 Write 后立即刷新底层的 flate.Writer，
// 以保证 bufio.Writer 的每次 Flush 调用都会把已压缩的数据真正送上线路。
type flushingWriter struct {
	fw *flate.Writer
}

func (w *flushingWriter) Write(b []byte) (int, error) {
	n, err := w.fw.Write(b)
	if err != nil {
		return n, err
	}
	if err := w.fw.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

type compressCommand struct {
	commandBase

	upgradeDone chan<- struct{}
}

var _ io.Writer = (*flushingWriter)(nil)
