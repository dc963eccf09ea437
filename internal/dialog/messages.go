package dialog

import (
	"html"
	"strconv"
	"strings"

	"github.com/spigell/vacancy-bot/internal/posting"
)

const (
	msgWelcome = "👋 Привет! Я собираю вакансии с HeadHunter, Хабр Карьеры, GetMatch и LinkedIn и присылаю только подходящие под ваши фильтры.\n\n"

	msgHelp = "Команды:\n" +
		"/search - найти вакансии (сначала новые)\n" +
		"/top - найти вакансии (сначала с высокой зарплатой)\n" +
		"/filters - показать текущие фильтры\n" +
		"/set_min_salary - минимальная зарплата\n" +
		"/set_max_salary - максимальная зарплата\n" +
		"/set_city - город (\"-\" чтобы сбросить)\n" +
		"/add_keyword - добавить ключевое слово\n" +
		"/remove_keyword &lt;слово&gt; - удалить ключевое слово\n" +
		"/clear_keywords - удалить все ключевые слова\n" +
		"/remote - только удаленная работа (вкл/выкл)\n" +
		"/no_agencies - скрывать кадровые агентства (вкл/выкл)\n" +
		"/experience &lt;лет|off&gt; - минимальный опыт\n" +
		"/sources &lt;hh habr getmatch linkedin|all&gt; - источники\n" +
		"/subscribe, /unsubscribe - рассылка новых вакансий\n" +
		"/reset - сбросить фильтры\n" +
		"/cancel - отменить ввод"

	msgUnknown       = "🤔 Не понимаю. "
	msgInternalError = "❌ Произошла ошибка. Попробуйте еще раз."
	msgCancelled     = "Ввод отменен."
	msgNothingToDo   = "Нечего отменять."

	msgAskMinSalary = "💵 Введите минимальную зарплату (например, 150000):"
	msgAskMaxSalary = "💵 Введите максимальную зарплату (например, 300000):"
	msgAskCity      = "📍 Введите город (или \"-\", чтобы искать по всем городам):"
	msgAskKeyword   = "➕ Введите ключевое слово. Например: "

	msgInvalidSalary     = "❌ Зарплата должна быть неотрицательным числом."
	msgInvalidExperience = "❌ Опыт должен быть неотрицательным числом лет или off."
	msgEmptyKeyword      = "❌ Ключевое слово не может быть пустым."
	msgKeywordMissing    = "❌ Такого ключевого слова нет в фильтре."
	msgRemoveKeywordHelp = "Использование: /remove_keyword &lt;слово&gt;"
	msgExperienceHelp    = "Использование: /experience &lt;лет|off&gt;, например /experience 3"
	msgSourcesHelp       = "Использование: /sources &lt;hh habr getmatch linkedin|all&gt;"

	msgSaved             = "✅ Сохранено.\n\n"
	msgReset             = "🔄 Фильтры сброшены.\n\n"
	msgSubscribed        = "🔔 Буду присылать новые вакансии по вашим фильтрам."
	msgUnsubscribed      = "🔕 Рассылка отключена."
	msgSearching         = "⏳ Ищу вакансии..."
	msgNoResults         = "😔 Подходящих вакансий не найдено. Попробуйте ослабить фильтры."
	msgSearchFailed      = "❌ Не удалось выполнить поиск. Попробуйте позже."
	msgSearchUnavailable = "Поиск сейчас недоступен."
)

// suggestedKeywords are offered when asking for a new keyword.
var suggestedKeywords = []string{
	"менеджер продукта",
	"product manager",
	"IT project manager",
	"team lead",
	"руководитель разработки",
	"head of",
	"cto",
	"технический директор",
	"product owner",
}

func askKeyword() string {
	return msgAskKeyword + strings.Join(suggestedKeywords, ", ")
}

func foundHeader(n int) string {
	return "✅ Найдено вакансий: " + strconv.Itoa(n)
}

func sourcesHelp(current []posting.Source) string {
	tags := make([]string, 0, len(current))
	for _, src := range current {
		tags = append(tags, string(src))
	}
	if len(tags) == 0 {
		return msgSourcesHelp
	}
	return msgSourcesHelp + "\nСейчас: " + strings.Join(tags, " ")
}

func keywordsHelp(current []string) string {
	if len(current) == 0 {
		return msgRemoveKeywordHelp
	}
	return msgRemoveKeywordHelp + "\nСейчас: " + html.EscapeString(strings.Join(current, ", "))
}
