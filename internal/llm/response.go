package llm

import "strings"

// CleanResponse убирает из ответа блок рассуждений <think> и markdown ограждения
func CleanResponse(response string) string {
	if idx := strings.LastIndex(response, "</think>"); idx >= 0 {
		response = response[idx+len("</think>"):]
	}

	response = strings.ReplaceAll(response, "```json", "")
	response = strings.ReplaceAll(response, "```", "")

	return strings.TrimSpace(response)
}

// ExtractJSON возвращает первый сбалансированный JSON объект из текста
// или пустую строку. Скобки внутри строковых литералов не учитываются.
func ExtractJSON(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start != -1 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
