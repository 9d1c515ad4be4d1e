package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"strings"
)

//go:embed words/*.txt
var wordFiles embed.FS

// DefaultWords loads the embedded censored-word lists. Lines starting
// with '#' are comments.
func DefaultWords() ([]string, error) {
	entries, err := wordFiles.ReadDir("words")
	if err != nil {
		return nil, err
	}

	var words []string
	for _, entry := range entries {
		data, err := wordFiles.ReadFile("words/" + entry.Name())
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			words = append(words, word)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return words, nil
}
