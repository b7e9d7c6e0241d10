package quiz

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
)

// ErrNoQuestions is returned when the question bank has no entries.
var ErrNoQuestions = errors.New("question bank is empty")

// Question is a single bank entry.
type Question struct {
	Text   string
	Answer string
}

// QuestionsProvider supplies random questions and distractor answers.
type QuestionsProvider interface {
	RandomQuestion() (Question, error)
	Distractors(answer string, limit int) []string
}

// QuestionsProviderReader takes content from reader, decodes a JSON
// object mapping question text to the correct answer and serves
// random picks from it.
type QuestionsProviderReader struct {
	questions []Question

	// Distinct answer values, the distractor pool.
	answers []string
}

// NewQuestionsProviderReader returns new instance of QuestionsProviderReader.
func NewQuestionsProviderReader(r io.Reader) (*QuestionsProviderReader, error) {
	var bank map[string]string
	if err := json.NewDecoder(r).Decode(&bank); err != nil {
		return nil, err
	}

	p := &QuestionsProviderReader{}
	seen := make(map[string]bool)
	for text, answer := range bank {
		p.questions = append(p.questions, Question{Text: text, Answer: answer})
		if !seen[answer] {
			seen[answer] = true
			p.answers = append(p.answers, answer)
		}
	}

	return p, nil
}

// RandomQuestion returns one bank entry picked uniformly at random.
func (p *QuestionsProviderReader) RandomQuestion() (Question, error) {
	if len(p.questions) == 0 {
		return Question{}, ErrNoQuestions
	}
	return p.questions[rand.Intn(len(p.questions))], nil
}

// Distractors samples up to limit distinct answers different from the
// given one, without replacement. Fewer than limit may be returned
// when the bank has fewer alternatives.
func (p *QuestionsProviderReader) Distractors(answer string, limit int) []string {
	pool := make([]string, 0, len(p.answers))
	for _, a := range p.answers {
		if a != answer {
			pool = append(pool, a)
		}
	}

	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
