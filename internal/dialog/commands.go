package dialog

import (
	"strings"

	"github.com/spigell/vacancy-bot/internal/utils"
)

type command int

const (
	cmdStart command = iota
	cmdHelp
	cmdFilters
	cmdSearch
	cmdTop
	cmdSetMinSalary
	cmdSetMaxSalary
	cmdSetCity
	cmdAddKeyword
	cmdRemoveKeyword
	cmdClearKeywords
	cmdRemote
	cmdNoAgencies
	cmdExperience
	cmdSources
	cmdSubscribe
	cmdUnsubscribe
	cmdReset
	cmdCancel
)

var slashCommands = map[string]command{
	"/start":          cmdStart,
	"/help":           cmdHelp,
	"/filters":        cmdFilters,
	"/search":         cmdSearch,
	"/top":            cmdTop,
	"/set_min_salary": cmdSetMinSalary,
	"/set_max_salary": cmdSetMaxSalary,
	"/set_city":       cmdSetCity,
	"/add_keyword":    cmdAddKeyword,
	"/remove_keyword": cmdRemoveKeyword,
	"/clear_keywords": cmdClearKeywords,
	"/remote":         cmdRemote,
	"/no_agencies":    cmdNoAgencies,
	"/experience":     cmdExperience,
	"/sources":        cmdSources,
	"/subscribe":      cmdSubscribe,
	"/unsubscribe":    cmdUnsubscribe,
	"/reset":          cmdReset,
	"/cancel":         cmdCancel,
}

const (
	LabelSearch      = "🔍 Найти вакансии"
	LabelTop         = "💰 Топ по зарплате"
	LabelFilters     = "⚙️ Мои фильтры"
	LabelMinSalary   = "💵 Мин. зарплата"
	LabelMaxSalary   = "💵 Макс. зарплата"
	LabelCity        = "📍 Город"
	LabelKeyword     = "➕ Ключевое слово"
	LabelRemote      = "🏠 Удаленка"
	LabelNoAgencies  = "🚫 Без агентств"
	LabelSubscribe   = "🔔 Подписаться"
	LabelUnsubscribe = "🔕 Отписаться"
	LabelReset       = "🔄 Сбросить фильтры"
	LabelCancel      = "❌ Отмена"
	LabelHelp        = "❓ Помощь"
)

var labelCommands = map[string]command{
	LabelSearch:      cmdSearch,
	LabelTop:         cmdTop,
	LabelFilters:     cmdFilters,
	LabelMinSalary:   cmdSetMinSalary,
	LabelMaxSalary:   cmdSetMaxSalary,
	LabelCity:        cmdSetCity,
	LabelKeyword:     cmdAddKeyword,
	LabelRemote:      cmdRemote,
	LabelNoAgencies:  cmdNoAgencies,
	LabelSubscribe:   cmdSubscribe,
	LabelUnsubscribe: cmdUnsubscribe,
	LabelReset:       cmdReset,
	LabelCancel:      cmdCancel,
	LabelHelp:        cmdHelp,
}

// Keyboard is the reply keyboard layout offered to users.
var Keyboard = [][]string{
	{LabelSearch, LabelTop},
	{LabelFilters, LabelKeyword},
	{LabelMinSalary, LabelMaxSalary},
	{LabelCity, LabelRemote, LabelNoAgencies},
	{LabelSubscribe, LabelUnsubscribe},
	{LabelReset, LabelCancel, LabelHelp},
}

// parseCommand recognizes a keyboard label or a slash command with optional
// arguments. Bot mentions such as /search@vacancy_bot are accepted.
func parseCommand(text string) (command, string, bool) {
	text = strings.TrimSpace(text)
	if cmd, ok := labelCommands[text]; ok {
		return cmd, "", true
	}

	if !strings.HasPrefix(text, "/") {
		return 0, "", false
	}

	head, args, _ := strings.Cut(text, " ")
	head = utils.Lower(head)
	if at := strings.IndexByte(head, '@'); at > 0 {
		head = head[:at]
	}

	cmd, ok := slashCommands[head]
	if !ok {
		return 0, "", false
	}
	return cmd, strings.TrimSpace(args), true
}
