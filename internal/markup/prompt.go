package markup

import (
	"fmt"
	"strings"
)

// GSAPScriptTag is the one external script the generated documents may load.
const GSAPScriptTag = `<script src="https://cdn.jsdelivr.net/npm/gsap@3.12.5/dist/gsap.min.js"></script>`

const systemInstructionTemplate = `You are a creative front-end developer producing a single-file HTML/CSS/JS animation with GSAP.
Return ONLY raw HTML. No markdown, no backticks, no explanations before or after the document.
The document must start with <!DOCTYPE html> and end with </html>.
Put all CSS in one inline <style> element and all JavaScript in inline <script> elements.
The only external resource allowed is: %s
The animation is recorded in a %dx%d viewport for %d seconds starting the moment the page loads.
Fill the whole viewport, start moving immediately, and keep motion visible for the full duration.
Do not wait for clicks, hovers, scrolling, or any other user input.`

// Viewport describes the recording surface the animation must target.
type Viewport struct {
	Width           int
	Height          int
	DurationSeconds int
}

// SystemInstruction renders the fixed instruction for the given viewport.
func SystemInstruction(v Viewport) string {
	return fmt.Sprintf(systemInstructionTemplate, GSAPScriptTag, v.Width, v.Height, v.DurationSeconds)
}

// Sanitize strips code-fence markers anywhere in the reply, trims whitespace,
// and drops prose outside the outermost <!DOCTYPE/<html ... </html> span when
// both ends are present.
func Sanitize(raw string) string {
	text := stripCodeFences(raw)
	lower := strings.ToLower(text)

	start := strings.Index(lower, "<!doctype")
	if start < 0 {
		start = strings.Index(lower, "<html")
	}
	end := strings.LastIndex(lower, "</html>")
	if start >= 0 && end > start {
		text = text[start : end+len("</html>")]
	}
	return strings.TrimSpace(text)
}

// stripCodeFences removes ```lang openers and bare ``` closers.
func stripCodeFences(content string) string {
	var b strings.Builder
	b.Grow(len(content))
	for {
		idx := strings.Index(content, "```")
		if idx < 0 {
			b.WriteString(content)
			break
		}
		b.WriteString(content[:idx])
		content = content[idx+3:]
		// Skip a language tag directly attached to the opener.
		n := 0
		for n < len(content) && isTagChar(content[n]) {
			n++
		}
		content = content[n:]
	}
	return strings.TrimSpace(b.String())
}

func isTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '+'
}

// snippet condenses text for log lines.
func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
