package refdoc

import "strings"

// EstimateTokens gives a rough token count. Vietnamese is written one syllable
// per word and tokenizes worse than English, so words count double.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := len(strings.Fields(text)) * 2
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// Excerpt keeps the leading paragraphs of text that fit in budget tokens.
// Paragraphs are separated by blank lines. A first paragraph larger than the
// budget is cut at a word boundary. A budget <= 0 disables the limit.
func Excerpt(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 || EstimateTokens(text) <= budget {
		return text
	}

	var kept []string
	used := 0
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		cost := EstimateTokens(para)
		if used+cost > budget {
			if len(kept) == 0 {
				kept = append(kept, cutWords(para, budget))
			}
			break
		}
		kept = append(kept, para)
		used += cost
	}
	return strings.Join(kept, "\n\n")
}

// cutWords keeps the first words of para that fit in budget tokens. Line
// breaks within the kept part are preserved.
func cutWords(para string, budget int) string {
	maxWords := budget / 2
	var sb strings.Builder
	words := 0
	for i, line := range strings.Split(para, "\n") {
		fields := strings.Fields(line)
		if words+len(fields) > maxWords {
			fields = fields[:maxWords-words]
		}
		if len(fields) == 0 {
			break
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(strings.Join(fields, " "))
		words += len(fields)
		if words >= maxWords {
			break
		}
	}
	return sb.String()
}
