package utils

// SplitText cuts text into chunks of roughly chunkSize runes, with each
// chunk repeating the last overlap runes of the previous one so sentence
// fragments at a boundary stay retrievable from both sides.
func SplitText(text string, chunkSize int, overlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)
	totalLen := len(runes)

	step := chunkSize - overlap
	if step <= 0 {
		// overlap >= chunkSize would never advance; fall back to
		// disjoint chunks
		step = chunkSize
	}

	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}
