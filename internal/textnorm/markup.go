package textnorm

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup extracts the visible text of an HTML fragment. Script and style
// bodies are dropped and whitespace is collapsed to single spaces.
func StripMarkup(markup string) (string, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var textBuilder strings.Builder
	inScript := false
	inStyle := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) {
				return strings.Join(strings.Fields(textBuilder.String()), " "), nil
			}
			return "", tokenizer.Err()

		case html.StartTagToken:
			switch tokenizer.Token().Data {
			case "script":
				inScript = true
			case "style":
				inStyle = true
			}

		case html.EndTagToken:
			switch tokenizer.Token().Data {
			case "script":
				inScript = false
			case "style":
				inStyle = false
			}

		case html.TextToken:
			if inScript || inStyle {
				continue
			}
			textBuilder.WriteString(tokenizer.Token().Data)
			textBuilder.WriteByte(' ')
		}
	}
}

func stripMarkupLossy(text string) string {
	out, err := StripMarkup(text)
	if err != nil {
		return text
	}
	return out
}
