package app

import "live-quiz-service/internal/domain"

// TallyAnswers counts answers per option. The result always has exactly the
// keys A-D; letters outside that set are not counted.
func TallyAnswers(answers []domain.Answer) domain.AnswerStats {
	stats := make(domain.AnswerStats, len(domain.OptionLetters))
	for _, opt := range domain.OptionLetters {
		stats[opt] = 0
	}
	for _, a := range answers {
		if _, ok := stats[a.Answer]; ok {
			stats[a.Answer]++
		}
	}
	return stats
}

func currentQuestion(questions []domain.Question, index int) *domain.Question {
	if index < 0 || index >= len(questions) {
		return nil
	}
	q := questions[index]
	return &q
}
