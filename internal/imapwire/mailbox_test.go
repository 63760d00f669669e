package imapwire

import "testing"

func TestMailboxNameRoundTrip(t *testing.T) {
	cases := []string{
		"INBOX",
		"Sent",
		"INBOX/Sub",
		"Déjà vu",
		"日本語",
		"foo&bar",
		"100% done",
		"",
	}
	for _, name := range cases {
		encoded := encodeMailboxName(name)
		got := decodeMailboxName(encoded)
		if got != name {
			t.Errorf("decodeMailboxName(encodeMailboxName(%q)) = %q, want %q (encoded: %q)", name, got, name, encoded)
		}
	}
}

func TestEncodeMailboxNameASCIIUnchanged(t *testing.T) {
	// 纯 ASCII、不含 '&' 的名称不应该被编码。
	name := "Archive/2024"
	if got := encodeMailboxName(name); got != name {
		t.Errorf("encodeMailboxName(%q) = %q, want unchanged", name, got)
	}
}

func TestEncodeMailboxNameEscapesAmpersand(t *testing.T) {
	got := encodeMailboxName("Q&A")
	want := "Q&-A"
	if got != want {
		t.Errorf("encodeMailboxName(%q) = %q, want %q", "Q&A", got, want)
	}
}

func TestDecodeMailboxNameUnterminatedEscape(t *testing.T) {
	// 未结束的转义序列按原样输出，不应该 panic 或丢字节。
	got := decodeMailboxName("foo&bar")
	want := "foo&bar"
	if got != want {
		t.Errorf("decodeMailboxName(%q) = %q, want %q", "foo&bar", got, want)
	}
}
