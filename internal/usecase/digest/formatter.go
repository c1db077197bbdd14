package digest

import (
	"strings"
	"unicode"

	"history-digest-bot/internal/domain"
)

// TruncateAtWord усекает текст до limit рун, разрывая только по пробелу,
// и добавляет многоточие. Слово посередине не режется никогда.
func TruncateAtWord(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		// Одно слово длиннее лимита: берём его целиком, дальше не режем.
		cut = limit
		for cut < len(runes) && !unicode.IsSpace(runes[cut]) {
			cut++
		}
	}
	return strings.TrimSpace(string(runes[:cut])) + "…"
}

// FormatHistory формирует сообщение первого этапа.
func FormatHistory(item domain.StageItem) string {
	return formatItem("📅 **מה קרה היום בהיסטוריה?**", item)
}

// FormatWorld формирует сообщение второго этапа.
func FormatWorld(item domain.StageItem) string {
	return formatItem("🌍 **רגע מהעולם - טבע ותרבות**", item)
}

func formatItem(header string, item domain.StageItem) string {
	title := item.Title
	body := item.Body
	if !item.Translated {
		// Непереведённый текст помечается и остаётся слева направо.
		title = "[EN] " + title
		body = "[EN] " + body
	}
	lines := []string{
		header,
		"",
		"🔸 **" + title + "**",
		"",
		body,
		"",
		"🔗 [קרא עוד במקור](" + item.Item.Link + ")",
	}
	return strings.Join(lines, "\n")
}

// FormatVideo формирует завершающее сообщение с найденным роликом.
func FormatVideo(video domain.Video) string {
	lines := []string{
		"🎥 **סרטון לסיום**",
		"",
		"🔸 **" + video.Title + "**",
		"",
	}
	if video.Description != "" {
		lines = append(lines, video.Description, "")
	}
	lines = append(lines,
		"🎬 [צפה בסרטון]("+video.URL+")",
		"",
		"---",
		"",
		closingText(),
	)
	return strings.Join(lines, "\n")
}

// FormatClosing формирует завершающее сообщение, когда ролик не нашёлся.
func FormatClosing() string {
	return closingText()
}

func closingText() string {
	return strings.Join([]string{
		"🌀 **זהו הסבב היומי שלך. ניפגש מחר!**",
		"",
		"תוכל לשלוח /start בכל עת כדי להתחיל סבב חדש.",
	}, "\n")
}

// FormatWelcome формирует приветствие перед первым этапом.
func FormatWelcome(name string) string {
	greeting := "🌟 שלום! ברוך הבא לבוט \"היסטורי\" 📜"
	if name != "" {
		greeting = "🌟 שלום " + name + "! ברוך הבא לבוט \"היסטורי\" 📜"
	}
	return strings.Join([]string{
		greeting,
		"",
		"אני כאן כדי להעשיר את הבוקר שלך עם תוכן היסטורי מרתק בעברית.",
		"בואו נתחיל עם מה שקרה היום בהיסטוריה!",
		"",
		"⏳ טוען תוכן...",
	}, "\n")
}
