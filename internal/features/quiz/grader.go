package quiz

// Result summarises a graded submission.
type Result struct {
	Answers        []Answer `json:"-"`
	Score          int      `json:"score"`
	MaxScore       int      `json:"maxScore"`
	Percentage     float64  `json:"percentage"`
	Passed         bool     `json:"passed"`
	AnswersCorrect int      `json:"answersCorrect"`
	TotalQuestions int      `json:"totalQuestions"`
	TimeSpent      int      `json:"timeSpent"`
}

// Grade scores answers against the quiz. answers[i] answers question i and
// must equal its correct answer exactly. Missing answers are wrong.
func Grade(q Quiz, answers []string) Result {
	result := Result{
		Answers:        make([]Answer, len(q.Questions)),
		TotalQuestions: len(q.Questions),
	}

	for i, question := range q.Questions {
		graded := Answer{QuestionID: question.ID}
		if i < len(answers) {
			graded.Answer = answers[i]
			graded.IsCorrect = answers[i] == question.CorrectAnswer
		}
		if graded.IsCorrect {
			graded.PointsEarned = question.Points
			result.Score += question.Points
			result.AnswersCorrect++
		}
		result.MaxScore += question.Points
		result.Answers[i] = graded
	}

	if result.MaxScore > 0 {
		result.Percentage = 100 * float64(result.Score) / float64(result.MaxScore)
	}
	result.Passed = result.Percentage >= float64(q.PassingScore)
	return result
}
