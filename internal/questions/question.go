package questions

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Difficulty задает уровень сложности вопроса
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties перечисляет уровни в порядке выбора
var Difficulties = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty приводит строку к Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !lo.Contains(Difficulties, d) {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Question представляет один вопрос банка. После загрузки не меняется.
type Question struct {
	ID              string     `json:"id"`
	Difficulty      Difficulty `json:"difficulty"`
	Text            string     `json:"text"`
	ReferenceAnswer string     `json:"reference_answer"`
}

// Bank хранит вопросы, сгруппированные по сложности
type Bank struct {
	byDifficulty map[Difficulty][]Question
}

// NewBank собирает банк из списка вопросов
func NewBank(items []Question) *Bank {
	return &Bank{byDifficulty: lo.GroupBy(items, func(q Question) Difficulty {
		return q.Difficulty
	})}
}

// Questions возвращает копию вопросов указанной сложности
func (b *Bank) Questions(d Difficulty) []Question {
	items := b.byDifficulty[d]
	out := make([]Question, len(items))
	copy(out, items)
	return out
}

func (b *Bank) Count(d Difficulty) int {
	return len(b.byDifficulty[d])
}

func (b *Bank) Total() int {
	return lo.SumBy(Difficulties, b.Count)
}
