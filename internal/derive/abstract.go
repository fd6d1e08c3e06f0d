package derive

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	reReference  = regexp.MustCompile(`\[[^\]]*\]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// DeriveAbstract extracts a short prose summary from rendered page HTML.
// rawHTML is the value of parse.text.* from an action=parse, prop=text,
// section=0 response: it is wrapped in a synthetic <section>, and the
// text of every top-level <p> is concatenated, one bracketed reference
// ("[…]") is removed, and the first two non-empty lines are joined into
// a single collapsed-whitespace sentence pair.
//
// On any parse failure, or if no usable paragraph text is found, it
// returns ("", false) so the caller can report a null summary field
// rather than propagate an error.
func DeriveAbstract(rawHTML string) (string, bool) {
	wrapped := "<section>" + rawHTML + "</section>"
	doc, err := html.Parse(strings.NewReader(wrapped))
	if err != nil {
		return "", false
	}

	section := findElement(doc, "section")
	if section == nil {
		return "", false
	}

	var paragraphs []string
	for c := section.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "p" {
			if text := strings.TrimSpace(textContent(c)); text != "" {
				paragraphs = append(paragraphs, text)
			}
		}
	}
	if len(paragraphs) == 0 {
		return "", false
	}

	joined := strings.Join(paragraphs, "\n")
	if loc := reReference.FindStringIndex(joined); loc != nil {
		joined = joined[:loc[0]] + joined[loc[1]:]
	}

	var selected []string
	for _, line := range strings.Split(joined, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		selected = append(selected, line)
		if len(selected) == 2 {
			break
		}
	}
	if len(selected) == 0 {
		return "", false
	}

	result := reWhitespace.ReplaceAllString(strings.Join(selected, " "), " ")
	return strings.TrimSpace(result), true
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
