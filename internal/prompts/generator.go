package prompts

import (
	"fmt"
	"strings"
)

// SummaryHeading предваряет итоговый отчет в чате
const SummaryHeading = "### Performance Summary"

// RetryMessage показывается, когда модель не смогла оценить ответ
const RetryMessage = "Sorry, I couldn't evaluate your answer right now. Please send it again to retry."

// SummaryFailedMessage показывается, когда не удалось получить итоговый отчет
const SummaryFailedMessage = "I couldn't generate your performance summary this time. Your results are listed above."

// Welcome - приветствие перед первым вопросом
func Welcome(persona string, totalQuestions int) string {
	return fmt.Sprintf("Welcome to the %s Mock Interview! The interview will consist of %d questions. "+
		"Answer each one with a formula or a short explanation. If an answer misses the mark you will get one hint "+
		"and a second try.", persona, totalQuestions)
}

// QuestionHeader оформляет вопрос с номером
func QuestionHeader(index, total int, text string) string {
	return fmt.Sprintf("**Question %d of %d:** %s", index, total, text)
}

// Conclusion - сообщение после последнего вопроса
func Conclusion() string {
	return "That was the last question! Thank you for completing the interview. Generating your performance summary now..."
}

// Praise и Hint оформляют отзыв модели
func Praise(explanation string) string {
	return "✅ " + explanation
}

func Hint(explanation string) string {
	return "💡 Hint: " + explanation + "\n\nGive it one more try."
}

// Failed - ответ на вторую неудачную попытку
func Failed(explanation, reference string) string {
	return fmt.Sprintf("❌ Not quite. %s\n\nA correct answer would be: `%s`", explanation, reference)
}

// EvaluationSystem - системный промпт оценщика. schema - JSON схема ответа.
func EvaluationSystem(persona, schema string) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are %s, an expert Excel interviewer. You are supportive and precise.\n\n", persona))
	prompt.WriteString("Decide whether the candidate's answer to an Excel question is functionally correct. ")
	prompt.WriteString("An answer does not have to match the reference character for character: equivalent formulas, ")
	prompt.WriteString("different cell references with the same meaning and correct plain-language descriptions all count.\n\n")

	prompt.WriteString("RULES:\n")
	prompt.WriteString("1. If the answer is correct, set is_correct to true and use explanation for short, specific praise.\n")
	prompt.WriteString("2. If the answer is incorrect, set is_correct to false and use explanation for a gentle hint ")
	prompt.WriteString("that points toward the solution. Never reveal the reference answer in the hint.\n")
	prompt.WriteString("3. You may reason inside a <think> block first. After it, output ONLY the JSON object, ")
	prompt.WriteString("without markdown code fences.\n\n")

	prompt.WriteString("The JSON object must match this schema:\n")
	prompt.WriteString(schema)

	return prompt.String()
}

// EvaluationUser - вопрос, эталон и ответ кандидата
func EvaluationUser(question, reference, answer string) string {
	return fmt.Sprintf(`Evaluate this candidate response.

Interview question: %q
Reference answer (for you only): %q
Candidate answer: %q`, question, reference, answer)
}

// SummarySystem - системный промпт для итогового отчета
func SummarySystem() string {
	return "You are a senior hiring manager reviewing an Excel skills interview. Write a concise performance summary " +
		"from the transcript. Name the candidate's key strengths and the areas they should develop, speak to the " +
		"candidate directly and keep the tone encouraging but professional. Do not invent questions that are not in the transcript."
}

// SummaryUser - расшифровка интервью и итоговый счет
func SummaryUser(transcript, scoreboard string) string {
	return fmt.Sprintf("Please write the performance summary for this interview.\n\nRESULTS:\n%s\n\nTRANSCRIPT:\n%s", scoreboard, transcript)
}
