package questions

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"
)

// ErrNoQuestions возвращается, если по заданному набору не нашлось ни одного вопроса
var ErrNoQuestions = errors.New("no questions available for the requested mix")

// Mix задает число вопросов каждой сложности
type Mix map[Difficulty]int

// MixFromCounts строит Mix из конфигурационной карты
func MixFromCounts(counts map[string]int) (Mix, error) {
	mix := Mix{}
	for key, count := range counts {
		d, err := ParseDifficulty(key)
		if err != nil {
			return nil, err
		}
		mix[d] = count
	}
	return mix, nil
}

// Provider выбирает случайный неповторяющийся набор вопросов
type Provider struct {
	bank *Bank
	mu   sync.Mutex
	rng  *rand.Rand
	mix  Mix
}

// NewProvider создает провайдера; seed == 0 означает случайное зерно
func NewProvider(bank *Bank, mix Mix, seed int64) *Provider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Provider{
		bank: bank,
		rng:  rand.New(rand.NewSource(seed)),
		mix:  mix,
	}
}

// Total возвращает число вопросов, которое реально попадет в интервью
func (p *Provider) Total() int {
	total := 0
	for _, d := range Difficulties {
		total += min(p.mix[d], p.bank.Count(d))
	}
	return total
}

// Select формирует плейлист: выборка без повторов по каждой сложности,
// затем общее перемешивание. Если вопросов не хватает, берется сколько есть.
func (p *Provider) Select() ([]Question, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var playlist []Question
	for _, d := range Difficulties {
		want := p.mix[d]
		if want <= 0 {
			continue
		}

		available := p.bank.Questions(d)
		take := min(want, len(available))
		if take < want {
			log.Printf("[WARN] Requested %d %s questions, bank has only %d", want, d, len(available))
		}

		for _, idx := range p.rng.Perm(len(available))[:take] {
			playlist = append(playlist, available[idx])
		}
	}

	if len(playlist) == 0 {
		return nil, ErrNoQuestions
	}

	p.rng.Shuffle(len(playlist), func(i, j int) {
		playlist[i], playlist[j] = playlist[j], playlist[i]
	})

	return playlist, nil
}
