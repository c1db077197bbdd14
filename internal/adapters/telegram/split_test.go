package telegram

import (
	"strings"
	"testing"
)

func TestSplitMessageShort(t *testing.T) {
	parts := SplitMessage("короткое сообщение")
	if len(parts) != 1 || parts[0] != "короткое сообщение" {
		t.Fatalf("короткий текст идёт одной частью, получили %v", parts)
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	if parts := SplitMessage("   \n  "); parts != nil {
		t.Fatalf("пустой текст не даёт частей, получили %v", parts)
	}
}

func TestSplitMessagePrefersNewline(t *testing.T) {
	paragraph := strings.Repeat("строка текста\n", 500)
	parts := SplitMessage(paragraph)
	if len(parts) < 2 {
		t.Fatalf("ожидали несколько частей, получили %d", len(parts))
	}
	for i, part := range parts {
		if len([]rune(part)) > messageLimit {
			t.Fatalf("часть %d превышает лимит: %d рун", i, len([]rune(part)))
		}
		if !strings.HasSuffix(part, "текста") {
			t.Fatalf("часть %d разрезана не по переводу строки: %q", i, part[len(part)-20:])
		}
	}
}

func TestSplitMessageNoNewlines(t *testing.T) {
	solid := strings.Repeat("а", messageLimit+100)
	parts := SplitMessage(solid)
	if len(parts) != 2 {
		t.Fatalf("ожидали две части, получили %d", len(parts))
	}
	if len([]rune(parts[0])) != messageLimit {
		t.Fatalf("первая часть должна быть ровно в лимит, получили %d", len([]rune(parts[0])))
	}
}
