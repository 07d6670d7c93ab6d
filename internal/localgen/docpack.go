package localgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
)

const (
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXlsx  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeCSV   = "text/csv"
	MimePlain = "text/plain"
)

var (
	csvHint  = regexp.MustCompile(`(?i)\bcsv\b`)
	xlsxHint = regexp.MustCompile(`(?i)excel|xlsx|spreadsheet|tabel`)
	docxHint = regexp.MustCompile(`(?i)word|docx|dokumen|document|proposal|laporan|surat`)

	blankBlocks = regexp.MustCompile(`\n{2,}`)
	cellSplit   = regexp.MustCompile(`\t|,|;\s*`)
)

// GuessFormat infers the target container from prompt keywords when the
// request carries no explicit format. Word-processor output is the default.
func GuessFormat(prompt string) string {
	switch {
	case csvHint.MatchString(prompt):
		return "csv"
	case xlsxHint.MatchString(prompt):
		return "xlsx"
	case docxHint.MatchString(prompt):
		return "docx"
	default:
		return "docx"
	}
}

// PackageDocument converts raw provider text into the requested container.
// format aliases (doc/word → docx, excel → xlsx) match what callers send.
func PackageDocument(text, format string) (models.CanonicalResult, error) {
	switch strings.ToLower(format) {
	case "docx", "doc", "word":
		return packDocx(text)
	case "xlsx", "excel":
		return packXlsx(text)
	case "csv":
		return packCSV(text), nil
	default:
		return packPlain(text), nil
	}
}

func packPlain(text string) models.CanonicalResult {
	return models.CanonicalResult{
		Kind:     models.KindDocumentDataURI,
		Value:    normalize.BuildDataURI(MimePlain, []byte(text)),
		MimeType: MimePlain,
		Filename: "document.txt",
	}
}

func packCSV(text string) models.CanonicalResult {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.ReplaceAll(strings.TrimRight(ln, "\r"), "\t", ",")
	}
	csv := strings.Join(lines, "\n")
	return models.CanonicalResult{
		Kind:     models.KindDocumentDataURI,
		Value:    normalize.BuildDataURI(MimeCSV, []byte(csv)),
		MimeType: MimeCSV,
		Filename: "spreadsheet.csv",
	}
}

// ParseRows splits provider text into spreadsheet rows. Markdown pipe tables
// are recognized; otherwise cells split on tabs, commas or semicolons.
func ParseRows(text string) [][]string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, ln)
		}
	}

	piped := false
	for _, ln := range lines {
		if strings.Contains(ln, "|") {
			piped = true
			break
		}
	}

	var rows [][]string
	for _, ln := range lines {
		var cells []string
		if piped {
			ln = strings.TrimPrefix(strings.TrimSpace(ln), "|")
			ln = strings.TrimSuffix(ln, "|")
			cells = strings.Split(ln, "|")
		} else {
			cells = cellSplit.Split(ln, -1)
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

// packXlsx writes a minimal single-sheet OOXML workbook. The container only
// needs to open in spreadsheet software; rich styling is out of scope.
func packXlsx(text string) (models.CanonicalResult, error) {
	rows := ParseRows(text)
	if len(rows) == 0 {
		rows = [][]string{{"Data", "Value"}}
	}

	var sheet strings.Builder
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sheet.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	for i, row := range rows {
		fmt.Fprintf(&sheet, `<row r="%d">`, i+1)
		for j, cell := range row {
			fmt.Fprintf(&sheet, `<c r="%s%d" t="inlineStr"><is><t>%s</t></is></c>`, colName(j), i+1, escapeXML(cell))
		}
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	raw, err := writeZip(map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>` +
			`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>` +
			`</Relationships>`,
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>` +
			`</Relationships>`,
		"xl/worksheets/sheet1.xml": sheet.String(),
	})
	if err != nil {
		return models.CanonicalResult{}, fmt.Errorf("package xlsx: %w", err)
	}

	return models.CanonicalResult{
		Kind:     models.KindDocumentDataURI,
		Value:    normalize.BuildDataURI(MimeXlsx, raw),
		MimeType: MimeXlsx,
		Filename: "spreadsheet.xlsx",
	}, nil
}

// packDocx writes a minimal OOXML word-processing document: one paragraph
// per blank-line-separated block, line breaks preserved inside blocks.
func packDocx(text string) (models.CanonicalResult, error) {
	var body strings.Builder
	for _, block := range blankBlocks.Split(text, -1) {
		body.WriteString(`<w:p><w:r>`)
		for i, line := range strings.Split(block, "\n") {
			if i > 0 {
				body.WriteString(`<w:br/>`)
			}
			fmt.Fprintf(&body, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(strings.TrimRight(line, "\r")))
		}
		body.WriteString(`</w:r></w:p>`)
	}

	raw, err := writeZip(map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
			`<w:body>` + body.String() + `</w:body></w:document>`,
	})
	if err != nil {
		return models.CanonicalResult{}, fmt.Errorf("package docx: %w", err)
	}

	return models.CanonicalResult{
		Kind:     models.KindDocumentDataURI,
		Value:    normalize.BuildDataURI(MimeDocx, raw),
		MimeType: MimeDocx,
		Filename: "document.docx",
	}, nil
}

func writeZip(files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	// Deterministic entry order keeps the output reproducible.
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
