package translator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/infra/groq"
)

func TestCleanResponsePicksFirstCleanLine(t *testing.T) {
	raw := "התרגום הוא: לא זה\n\nרומא העתיקה שלטה בעולם\nאו: גרסה אחרת"
	if got := cleanResponse(raw); got != "רומא העתיקה שלטה בעולם" {
		t.Fatalf("ожидали первую содержательную строку, получили %q", got)
	}
}

func TestCleanResponseFallsBackWhenAllUnwanted(t *testing.T) {
	raw := "התרגום הוא: גרסה ראשונה\nאו: גרסה שנייה"
	if got := cleanResponse(raw); got != "התרגום הוא: גרסה ראשונה" {
		t.Fatalf("если все строки служебные, берём первую непустую, получили %q", got)
	}
}

func TestCleanResponseEmpty(t *testing.T) {
	if got := cleanResponse("  \n \n"); got != "" {
		t.Fatalf("пустой ответ остаётся пустым, получили %q", got)
	}
}

func TestCapInputWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 400) // 2000 рун
	capped := capInput(long)
	if len([]rune(capped)) > maxInputRunes {
		t.Fatalf("вход должен усекаться до %d рун, получили %d", maxInputRunes, len([]rune(capped)))
	}
	if strings.HasSuffix(capped, "wor") || strings.HasSuffix(capped, "wo") {
		t.Fatalf("усечение разрезало слово: %q", capped[len(capped)-10:])
	}
}

func TestCapInputShortUnchanged(t *testing.T) {
	if got := capInput("короткий текст"); got != "короткий текст" {
		t.Fatalf("короткий вход не меняется, получили %q", got)
	}
}

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("неожиданный путь %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("неожиданный заголовок авторизации %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"רומא העתיקה"}}]}`))
	}))
	defer srv.Close()

	client := groq.NewClient("test-key", srv.URL, 5*time.Second)
	tr := NewGroq(client, "llama3-8b-8192", zerolog.Nop())

	got, err := tr.Translate(context.Background(), "Ancient Rome", "היסטוריה")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != "רומא העתיקה" {
		t.Fatalf("ожидали перевод, получили %q", got)
	}
}

func TestTranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	client := groq.NewClient("test-key", srv.URL, 5*time.Second)
	tr := NewGroq(client, "llama3-8b-8192", zerolog.Nop())

	if _, err := tr.Translate(context.Background(), "Ancient Rome", ""); err == nil {
		t.Fatal("ожидали ошибку API")
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	tr := NewGroq(groq.NewClient("test-key", "http://127.0.0.1:0", time.Second), "m", zerolog.Nop())
	if _, err := tr.Translate(context.Background(), "   ", ""); err == nil {
		t.Fatal("пустой текст — ошибка без похода в сеть")
	}
}
