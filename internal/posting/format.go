package posting

import (
	"html"
	"strings"
)

const (
	defaultSourceEmoji = "📌"
	unknownCompany     = "Не указана"
	unknownSalary      = "Не указана"
	unknownExperience  = "Не указан"
	unknownCity        = "Не указан"
)

var sourceEmoji = map[Source]string{
	SourceHH:       "🏢",
	SourceHabr:     "📘",
	SourceLinkedIn: "🔗",
	SourceGetMatch: "🤝",
}

var sourceNames = map[Source]string{
	SourceHH:       "HeadHunter",
	SourceHabr:     "Хабр Карьера",
	SourceLinkedIn: "LinkedIn",
	SourceGetMatch: "GetMatch",
}

// Emoji returns the marker shown next to postings of the source.
func (s Source) Emoji() string {
	if e, ok := sourceEmoji[s]; ok {
		return e
	}
	return defaultSourceEmoji
}

// DisplayName returns the human readable source name.
func (s Source) DisplayName() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return string(s)
}

// Format renders the posting as a Telegram HTML message.
func Format(p Posting) string {
	var sb strings.Builder

	sb.WriteString(p.Source.Emoji() + " <b>" + html.EscapeString(p.Title) + "</b>\n")
	sb.WriteString("🏢 <b>Компания:</b> " + html.EscapeString(orDefault(p.Company, unknownCompany)) + "\n")

	if p.Agency {
		sb.WriteString("🤝 <b>Агентство:</b> Да\n")
	}

	salary := p.SalaryRaw
	if salary == "" {
		salary = SalaryText(p.SalaryMin, p.SalaryMax, p.SalaryCurrency)
	}
	sb.WriteString("💰 <b>Зарплата:</b> " + html.EscapeString(orDefault(salary, unknownSalary)) + "\n")
	sb.WriteString("📊 <b>Опыт:</b> " + html.EscapeString(orDefault(p.ExperienceRaw, unknownExperience)) + "\n")

	location := orDefault(p.City, unknownCity)
	if p.Remote {
		location += " (удаленно)"
	}
	sb.WriteString("📍 <b>Город:</b> " + html.EscapeString(location) + "\n")

	sb.WriteString("🔗 <b>Ссылка:</b> " + html.EscapeString(p.URL) + "\n")
	sb.WriteString("📅 <b>Источник:</b> " + p.Source.DisplayName() + "\n")

	return sb.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
