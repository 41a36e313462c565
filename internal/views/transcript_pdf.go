package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// EnglishTranscriptTitle 为下载 PDF 的标题。
const EnglishTranscriptTitle = "Lecture Transcript - English"

const (
	pdfLineHeight  = 6.0
	pdfTitleHeight = 10.0
)

// RenderTranscriptPDF 将转写渲染为 A4 PDF：标题之后每个非空行一个自动换行段落，页脚带页码。
func RenderTranscriptPDF(w io.Writer, title, text string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	// 内置字体只覆盖 cp1252，其余字符由转换表降级
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, pdfTitleHeight, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pdf.MultiCell(0, pdfLineHeight, tr(line), "", "L", false)
		pdf.Ln(2)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("views: render transcript pdf: %w", err)
	}
	return nil
}
