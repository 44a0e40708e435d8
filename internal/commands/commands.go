package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
)

// Команды, общие для всех чат-интерфейсов
const (
	Start   = "/start"
	Help    = "/help"
	Status  = "/status"
	Restart = "/restart"
	Stop    = "/stop"
	Summary = "/summary"
	Quit    = "/quit"
)

const maxTypoDistance = 2

type Command struct {
	Name        string
	Description string
}

// Set - набор команд конкретного интерфейса
type Set []Command

var Chat = Set{
	{Start, "Start a new interview"},
	{Status, "Show interview progress"},
	{Summary, "Show the performance summary again"},
	{Restart, "Drop the current interview and start over"},
	{Stop, "Stop the current interview"},
	{Help, "Show this message"},
}

// Console - команды терминального режима, где сессия одна на процесс
var Console = Set{
	{Status, "Show interview progress"},
	{Summary, "Show the performance summary again"},
	{Restart, "Start over with new questions"},
	{Help, "Show this message"},
	{Quit, "Leave the interview"},
}

// IsCommand сообщает, похож ли текст на команду
func IsCommand(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "/")
}

// Parse возвращает имя команды в нижнем регистре без аргументов и суффикса @bot
func Parse(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

func (s Set) Names() []string {
	return lo.Map(s, func(c Command, _ int) string { return c.Name })
}

func (s Set) Has(name string) bool {
	return lo.ContainsBy(s, func(c Command) bool { return c.Name == name })
}

// Suggest подбирает ближайшую известную команду для опечатки
func (s Set) Suggest(input string) (string, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || input == "/" {
		return "", false
	}

	ranks := fuzzy.RankFindFold(input, s.Names())
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	// Перестановки букв ("/strat") не находятся поиском подпоследовательности
	best := lo.MinBy(s.Names(), func(a, b string) bool {
		return fuzzy.LevenshteinDistance(input, a) < fuzzy.LevenshteinDistance(input, b)
	})
	if fuzzy.LevenshteinDistance(input, best) <= maxTypoDistance {
		return best, true
	}
	return "", false
}

// Unknown формирует ответ на неизвестную команду
func (s Set) Unknown(input string) string {
	if suggestion, ok := s.Suggest(input); ok {
		return fmt.Sprintf("Unknown command %s. Did you mean %s?", input, suggestion)
	}
	return fmt.Sprintf("Unknown command %s. Send %s to see what I understand.", input, Help)
}

// HelpText перечисляет команды набора
func (s Set) HelpText() string {
	var b strings.Builder
	for _, c := range s {
		b.WriteString(fmt.Sprintf("%s - %s\n", c.Name, c.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}
