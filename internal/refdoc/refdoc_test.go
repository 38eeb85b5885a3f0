package refdoc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/lessonplan/internal/docexport"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"plan.txt", "*refdoc.TextExtractor", false},
		{"plan.MD", "*refdoc.MarkdownExtractor", false},
		{"plan.htm", "*refdoc.HTMLExtractor", false},
		{"plan.pdf", "*refdoc.PDFExtractor", false},
		{"plan.docx", "*refdoc.DOCXExtractor", false},
		{"plan.doc", "", true},
		{"plan", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := ForFile(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.name)
				}
				if IsSupportedExtension(tt.name) {
					t.Errorf("IsSupportedExtension(%q) = true", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(ex); got != tt.want {
				t.Errorf("extractor = %s, want %s", got, tt.want)
			}
			if !IsSupportedExtension(tt.name) {
				t.Errorf("IsSupportedExtension(%q) = false", tt.name)
			}
		})
	}
}

func typeName(ex Extractor) string {
	switch ex.(type) {
	case *TextExtractor:
		return "*refdoc.TextExtractor"
	case *MarkdownExtractor:
		return "*refdoc.MarkdownExtractor"
	case *HTMLExtractor:
		return "*refdoc.HTMLExtractor"
	case *PDFExtractor:
		return "*refdoc.PDFExtractor"
	case *DOCXExtractor:
		return "*refdoc.DOCXExtractor"
	}
	return "unknown"
}

func TestTextExtractor(t *testing.T) {
	input := "# GIÁO ÁN\n\n## I. Mục tiêu\n- Trẻ biết đếm\n#không phải tiêu đề\n   \n"
	s, err := (&TextExtractor{}).Extract(strings.NewReader(input), "mau.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "mau" {
		t.Errorf("title = %q, want %q", s.Title, "mau")
	}
	want := []Block{
		{Level: 1, Text: "GIÁO ÁN"},
		{Level: 2, Text: "I. Mục tiêu"},
		{Text: "- Trẻ biết đếm"},
		{Text: "#không phải tiêu đề"},
	}
	assertBlocks(t, s.Blocks, want)
}

func TestMarkdownExtractor(t *testing.T) {
	input := "# Giáo án\n\n## II. Chuẩn bị\n\nĐồ dùng của cô.\nĐồ dùng của trẻ.\n\n" +
		"- **Cô**: hỏi trẻ\n- **Trẻ**: trả lời\n\n```\ncode\n```\n\n---\n\n###### Sâu\n"
	s, err := (&MarkdownExtractor{}).Extract(strings.NewReader(input), "plan.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Block{
		{Level: 1, Text: "Giáo án"},
		{Level: 2, Text: "II. Chuẩn bị"},
		{Text: "Đồ dùng của cô."},
		{Text: "Đồ dùng của trẻ."},
		{Bullet: true, Text: "**Cô**: hỏi trẻ"},
		{Bullet: true, Text: "**Trẻ**: trả lời"},
		{Level: 4, Text: "Sâu"},
	}
	assertBlocks(t, s.Blocks, want)
}

func TestHTMLExtractor(t *testing.T) {
	input := `<html><head><title>Giáo án mẫu</title><style>p{}</style></head><body>
<nav>menu</nav>
<h2>I. Mục tiêu</h2>
<p>Trẻ <b>biết</b>   đếm</p>
<ul><li>Một</li><li>Hai</li></ul>
<script>alert(1)</script>
</body></html>`
	s, err := (&HTMLExtractor{}).Extract(strings.NewReader(input), "plan.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Title != "Giáo án mẫu" {
		t.Errorf("title = %q", s.Title)
	}
	want := []Block{
		{Level: 2, Text: "I. Mục tiêu"},
		{Text: "Trẻ **biết** đếm"},
		{Bullet: true, Text: "Một"},
		{Bullet: true, Text: "Hai"},
	}
	assertBlocks(t, s.Blocks, want)
}

func TestHTMLExtractor_BoldText(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{"bold word", `<p>Cô <b>hỏi</b></p>`, "Cô **hỏi**"},
		{"strong before colon", `<p><strong>Chủ đề</strong>: Gia đình</p>`, "**Chủ đề**: Gia đình"},
		{"nested bold", `<p><strong>Cô <b>hỏi</b> trẻ</strong></p>`, "**Cô hỏi trẻ**"},
		{"blank bold", `<p>A<b> </b>B</p>`, "A B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "<html><body>" + tt.html + "</body></html>"
			s, err := (&HTMLExtractor{}).Extract(strings.NewReader(input), "a.html")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertBlocks(t, s.Blocks, []Block{{Text: tt.want}})
		})
	}
}

func TestDOCXExtractor_ReadsExportedPlan(t *testing.T) {
	source := `# Giáo án làm quen với toán

### 3. Tiến hành
#### Hoạt động 1: Ổn định
- **Cô**: Cho trẻ hát bài "Tập đếm".
- **Trẻ**: Hát cùng cô.

## IV. Đánh giá
Trẻ hứng thú.`

	var buf bytes.Buffer
	if err := docexport.Encode(docexport.Convert(source, docexport.Metadata{}), &buf); err != nil {
		t.Fatalf("encode: %v", err)
	}

	s, err := (&DOCXExtractor{}).Extract(&buf, "giao_an.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md := s.Markdown()
	for _, want := range []string{
		"**GIÁO ÁN LÀM QUEN VỚI TOÁN**",
		"#### Hoạt động 1: Ổn định",
		`- **Cô**: Cho trẻ hát bài "Tập đếm".`,
		"- **Trẻ**: Hát cùng cô.",
		"Trẻ hứng thú.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Hoạt động của cô") {
		t.Errorf("header row should be skipped:\n%s", md)
	}
}

func TestDOCXExtractor_TooLarge(t *testing.T) {
	ex := &DOCXExtractor{MaxBytes: 4}
	if _, err := ex.Extract(strings.NewReader("0123456789"), "x.docx"); err == nil {
		t.Fatal("expected size error")
	}
}

func TestDOCXExtractor_Invalid(t *testing.T) {
	if _, err := (&DOCXExtractor{}).Extract(strings.NewReader("not a zip"), "x.docx"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSample_Markdown(t *testing.T) {
	s := &Sample{}
	s.add(Block{Level: 1, Text: "A"})
	s.add(Block{Text: "  "})
	s.add(Block{Text: "body"})
	s.add(Block{Level: 6, Text: "deep"})
	s.add(Block{Bullet: true, Text: "item"})

	want := "# A\nbody\n\n#### deep\n- item"
	if got := s.Markdown(); got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
}

func TestExtract(t *testing.T) {
	md, err := Extract(strings.NewReader("## Mục tiêu\nđếm"), "a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md != "## Mục tiêu\nđếm" {
		t.Errorf("got %q", md)
	}
	if _, err := Extract(strings.NewReader("x"), "a.exe"); err == nil {
		t.Error("expected unsupported extension error")
	}
}

func assertBlocks(t *testing.T, got, want []Block) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
