package summarizer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var (
	reHeading   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet    = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumbered  = regexp.MustCompile(`^\d+\.\s+(.+)$`)
	reTimestamp = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}[.,]\d{3}\s+-->\s+\d{2}:\d{2}:\d{2}[.,]\d{3}\]\s*`)
	reUnsafe    = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// WriteReport archives an item's pipeline output as a .docx file in dir and
// returns its path. Sections for a missing summary or transcript are omitted.
func WriteReport(item models.Item, result models.PipelineResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}

	title := item.Title
	if title == "" {
		title = item.ID
	}
	addStyledRun(doc.AddParagraph(""), title, true, 16)
	addStyledRun(doc.AddParagraph(""), item.URL, false, fontSize)
	if !item.PublishedAt.IsZero() {
		addStyledRun(doc.AddParagraph(""), "Published: "+item.PublishedAt.UTC().Format("2006-01-02 15:04 MST"), false, fontSize)
	}

	if result.HasSummary() {
		doc.AddParagraph("")
		addStyledRun(doc.AddParagraph(""), "Summary", true, 15)
		writeMarkdown(doc, *result.Summary)
	}

	if result.HasTranscript() {
		doc.AddParagraph("")
		addStyledRun(doc.AddParagraph(""), "Transcript", true, 15)
		for _, line := range transcriptLines(*result.Transcript) {
			p := doc.AddParagraph("")
			p.AddText(line).Font(fontName).Size(fontSize).Color("000000")
		}
	}

	outputPath := filepath.Join(dir, reportFileName(item))
	if err := doc.SaveTo(outputPath); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return outputPath, nil
}

func reportFileName(item models.Item) string {
	base := strings.Trim(reUnsafe.ReplaceAllString(item.Title, "_"), "_")
	if len(base) > 60 {
		base = base[:60]
	}
	if base == "" {
		return item.ID + ".docx"
	}
	return base + "_" + item.ID + ".docx"
}

// writeMarkdown renders headings, bullets and bold runs of a markdown summary
func writeMarkdown(doc *docx.RootDoc, markdown string) {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			addStyledRun(doc.AddParagraph(""), m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			addRichText(doc.AddParagraph(""), "• "+m[1])
			continue
		}

		if reNumbered.MatchString(trimmed) {
			addRichText(doc.AddParagraph(""), trimmed)
			continue
		}

		addRichText(doc.AddParagraph(""), trimmed)
	}
}

// transcriptLines strips whisper timestamps and drops repeated lines,
// whisper tends to loop on filler.
func transcriptLines(transcript string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(transcript, "\n") {
		t := strings.TrimSpace(reTimestamp.ReplaceAllString(strings.TrimSpace(line), ""))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
