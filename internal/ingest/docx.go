package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/uzzysan/Klauzule-zakazane/internal/models"
	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// documentXML mirrors the parts of word/document.xml we care about.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

type coreProperties struct {
	Title   string `xml:"title"`
	Creator string `xml:"creator"`
	Subject string `xml:"subject"`
}

// parseDOCX walks the OOXML archive directly: paragraphs become sections,
// heading-styled paragraphs keep their text as the section title.
func (ing *Ingestor) parseDOCX(data []byte) Outcome {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("open docx archive: %v", err))
	}

	content, err := readArchiveFile(reader, "word/document.xml")
	if err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("read docx body: %v", err))
	}
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return degraded(models.ParsedText{}, fmt.Sprintf("parse docx body: %v", err))
	}

	var parts []string
	sections := make([]models.Section, 0, len(doc.Body.Paragraphs))
	offset := 0
	for _, para := range doc.Body.Paragraphs {
		var sb strings.Builder
		for _, run := range para.Runs {
			for _, t := range run.Text {
				sb.WriteString(t.Content)
			}
		}
		text := util.SanitizeText(sb.String())
		if text == "" {
			continue
		}
		if len(parts) > 0 {
			offset += 2 // paragraph separator
		}
		section := models.Section{
			Content: text,
			Start:   offset,
			End:     offset + len(text),
		}
		if strings.HasPrefix(para.Props.Style.Val, "Heading") {
			section.Title = text
		}
		sections = append(sections, section)
		offset += len(text)
		parts = append(parts, text)
	}
	fullText := strings.Join(parts, "\n\n")
	words := wordCount(fullText)

	// Rough estimate: 500 words per page.
	pages := words / 500
	if pages < 1 {
		pages = 1
	}

	return ok(models.ParsedText{
		FullText:  fullText,
		Pages:     pages,
		Sections:  sections,
		Meta:      docxMeta(reader),
		WordCount: words,
	})
}

func docxMeta(reader *zip.Reader) models.DocumentMeta {
	content, err := readArchiveFile(reader, "docProps/core.xml")
	if err != nil {
		return models.DocumentMeta{}
	}
	var core coreProperties
	if err := xml.Unmarshal(content, &core); err != nil {
		return models.DocumentMeta{}
	}
	return models.DocumentMeta{
		Title:   core.Title,
		Author:  core.Creator,
		Subject: core.Subject,
	}
}

func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not present in archive", name)
}
