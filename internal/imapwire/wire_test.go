package imapwire

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/dahlgren/goimap"
	"github.com/dahlgren/goimap/internal/imapnum"
)

// encodeToBytes 把 write 写入的内容编码成字节，每次调用独立刷新。
func encodeToBytes(t *testing.T, write func(enc *Encoder)) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)
	enc := NewEncoder(bw, ConnSideClient)
	write(enc)
	if err := enc.CRLF(); err != nil {
		t.Fatalf("CRLF: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeDecodeAtomAndSP(t *testing.T) {
	data := encodeToBytes(t, func(enc *Encoder) {
		enc.Atom("LOGIN").SP().Atom("alice")
	})

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(data)), ConnSideServer)
	var cmd, user string
	if !dec.ExpectAtom(&cmd) || !dec.ExpectSP() || !dec.ExpectAtom(&user) {
		t.Fatalf("decode failed: %v", dec.Err())
	}
	if cmd != "LOGIN" || user != "alice" {
		t.Errorf("decoded (%q, %q), want (LOGIN, alice)", cmd, user)
	}
}

func TestEncodeDecodeMailboxNonASCII(t *testing.T) {
	const name = "INBOX/日本語"

	data := encodeToBytes(t, func(enc *Encoder) {
		enc.Mailbox(name)
	})

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(data)), ConnSideServer)
	var got string
	if !dec.ExpectMailbox(&got) {
		t.Fatalf("decode failed: %v", dec.Err())
	}
	if got != name {
		t.Errorf("decoded mailbox %q, want %q", got, name)
	}
}

func TestEncodeDecodeNumSet(t *testing.T) {
	rawSet, err := imapnum.Parse("1:3,5,9:*")
	if err != nil {
		t.Fatalf("imapnum.Parse: %v", err)
	}
	numSet := imap.SeqSetFromNums(rawSet)

	data := encodeToBytes(t, func(enc *Encoder) {
		enc.NumSet(numSet)
	})

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(data)), ConnSideServer)
	var got imap.NumSet
	if !dec.ExpectNumSet(NumKindSeq, &got) {
		t.Fatalf("decode failed: %v", dec.Err())
	}
	if got.String() != numSet.String() {
		t.Errorf("decoded num-set %q, want %q", got.String(), numSet.String())
	}
}

func TestEncodeDecodeQuotedString(t *testing.T) {
	const s = `say "hi" \ there`

	data := encodeToBytes(t, func(enc *Encoder) {
		enc.Quoted(s)
	})

	dec := NewDecoder(bufio.NewReader(bytes.NewReader(data)), ConnSideServer)
	var got string
	if !dec.ExpectQuoted(&got) {
		t.Fatalf("decode failed: %v", dec.Err())
	}
	if got != s {
		t.Errorf("decoded quoted string %q, want %q", got, s)
	}
}
