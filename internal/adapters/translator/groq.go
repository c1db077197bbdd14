package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"history-digest-bot/internal/domain"
	"history-digest-bot/internal/infra/groq"
)

// Контракт фиксированной максимальной длины одного вызова: более длинный
// вход усекается по границе слова до передачи модели.
const maxInputRunes = 1200

// Groq переводит текст на иврит через Chat Completions.
type Groq struct {
	client *groq.Client
	model  string
	log    zerolog.Logger
}

// NewGroq создаёт переводчик.
func NewGroq(client *groq.Client, model string, logger zerolog.Logger) *Groq {
	return &Groq{client: client, model: model, log: logger}
}

var _ domain.Translator = (*Groq)(nil)

// Translate переводит текст. Возвращает ровно один вариант перевода без
// пояснений модели; смешанный или пустой результат считается ошибкой.
func (g *Groq) Translate(ctx context.Context, text, hint string) (string, error) {
	text = capInput(strings.TrimSpace(text))
	if text == "" {
		return "", fmt.Errorf("translator: пустой текст")
	}
	if hint == "" {
		hint = "תוכן כללי"
	}

	prompt := strings.Join([]string{
		"תרגם את הטקסט הבא לעברית טבעית ונאה. תן תרגום אחד בלבד, לא אופציות מרובות.",
		"",
		"הקשר: " + hint,
		"",
		"חוקים לתרגום:",
		"1. תן תרגום אחד ויחיד בלבד",
		"2. אל תכתוב \"בחרו את התרגום\" או אופציות מרובות",
		"3. אל תוסיף הערות או הסברים",
		"4. השתמש בעברית זורמת וטבעית",
		"5. אל תתחיל במילים \"התרגום הוא\" או דומה - פשוט כתוב את התרגום",
		"",
		"טקסט לתרגום:",
		text,
		"",
		"תרגום:",
	}, "\n")

	resp, err := g.client.CreateChatCompletion(ctx, groq.ChatCompletionRequest{
		Model:       g.model,
		Messages:    []groq.ChatMessage{{Role: groq.RoleUser, Content: prompt}},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("translator: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translator: пустой ответ модели")
	}

	result := cleanResponse(resp.Choices[0].Message.Content)
	if result == "" {
		return "", fmt.Errorf("translator: модель не вернула перевод")
	}
	return result, nil
}

// Модель иногда добавляет варианты и пояснения вопреки промпту.
var unwantedPatterns = []string{
	"בחרו את התרגום",
	"התרגום הוא:",
	"התרגום:",
	"או:",
	"(תוספת:",
	"אם תרצה",
	"אני יכול לעשות שיפורים",
}

// cleanResponse выбирает первую содержательную строку ответа без служебных
// оборотов модели.
func cleanResponse(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		unwanted := false
		for _, pattern := range unwantedPatterns {
			if strings.Contains(line, pattern) {
				unwanted = true
				break
			}
		}
		if !unwanted {
			return line
		}
	}
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func capInput(text string) string {
	runes := []rune(text)
	if len(runes) <= maxInputRunes {
		return text
	}
	cut := string(runes[:maxInputRunes])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
