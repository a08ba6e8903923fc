package notify

import "strings"

const messageLimit = 4096

// splitMessage разбивает текст оповещения на сообщения в пределах лимита
// Telegram. Текст собирается из секций, разделённых пустой строкой
// (FormatAlert), поэтому в первую очередь разрез идёт по границе секции;
// секция длиннее лимита режется по переводу строки, в крайнем случае — по
// символу.
func splitMessage(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len([]rune(trimmed)) <= messageLimit {
		return []string{trimmed}
	}

	var parts []string
	var current []rune
	flush := func() {
		if chunk := strings.Trim(string(current), "\n"); chunk != "" {
			parts = append(parts, chunk)
		}
		current = nil
	}

	for _, section := range strings.Split(trimmed, "\n\n") {
		runes := []rune(section)
		switch {
		case len(current) == 0 && len(runes) <= messageLimit:
			current = runes
		case len(current)+2+len(runes) <= messageLimit:
			current = append(current, '\n', '\n')
			current = append(current, runes...)
		default:
			flush()
			for len(runes) > messageLimit {
				cut := messageLimit
				for i := messageLimit; i > 0; i-- {
					if runes[i-1] == '\n' {
						cut = i
						break
					}
				}
				if chunk := strings.Trim(string(runes[:cut]), "\n"); chunk != "" {
					parts = append(parts, chunk)
				}
				runes = runes[cut:]
			}
			current = runes
		}
	}
	flush()
	return parts
}
