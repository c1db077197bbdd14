package digest

import (
	"strings"
	"testing"

	"history-digest-bot/internal/domain"
)

func TestTruncateAtWordShortText(t *testing.T) {
	if got := TruncateAtWord("короткий текст", 100); got != "короткий текст" {
		t.Fatalf("короткий текст не должен меняться, получили %q", got)
	}
}

func TestTruncateAtWordBoundary(t *testing.T) {
	got := TruncateAtWord("one two three four five", 10)
	if got != "one two…" {
		t.Fatalf("ожидали разрыв по пробелу, получили %q", got)
	}
}

func TestTruncateAtWordNeverMidWord(t *testing.T) {
	got := TruncateAtWord("ancient civilizations flourished", 12)
	trimmed := strings.TrimSuffix(got, "…")
	for _, word := range strings.Fields("ancient civilizations flourished") {
		if strings.HasPrefix(word, trimmed) && word != trimmed && !strings.Contains(trimmed, " ") {
			t.Fatalf("слово разрезано посередине: %q", got)
		}
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("ожидали многоточие, получили %q", got)
	}
}

func TestTruncateAtWordLongSingleWord(t *testing.T) {
	got := TruncateAtWord("сверхдлинноеоднослово ещё", 5)
	if got != "сверхдлинноеоднослово…" {
		t.Fatalf("одно слово длиннее лимита берётся целиком, получили %q", got)
	}
}

func TestFormatHistoryTranslated(t *testing.T) {
	item := domain.StageItem{
		Item:       domain.Item{Link: "https://example.com/a"},
		Title:      "כותרת",
		Body:       "גוף",
		Translated: true,
	}
	text := FormatHistory(item)
	if strings.Contains(text, "[EN]") {
		t.Fatal("переведённый текст не должен помечаться [EN]")
	}
	if !strings.Contains(text, "https://example.com/a") {
		t.Fatal("ожидали ссылку на источник")
	}
}

func TestFormatWorldUntranslated(t *testing.T) {
	item := domain.StageItem{
		Item:  domain.Item{Link: "https://example.com/b"},
		Title: "Original title",
		Body:  "Original body",
	}
	text := FormatWorld(item)
	if !strings.Contains(text, "[EN] Original title") {
		t.Fatal("ожидали пометку [EN] у заголовка")
	}
	if !strings.Contains(text, "[EN] Original body") {
		t.Fatal("ожидали пометку [EN] у тела")
	}
}

func TestFormatVideoContainsLink(t *testing.T) {
	text := FormatVideo(domain.Video{Title: "t", URL: "https://www.youtube.com/watch?v=abc"})
	if !strings.Contains(text, "https://www.youtube.com/watch?v=abc") {
		t.Fatal("ожидали ссылку на ролик")
	}
	if !strings.Contains(text, FormatClosing()) {
		t.Fatal("ожидали завершающий текст")
	}
}
