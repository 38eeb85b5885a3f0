package generate

import (
	"fmt"
	"strings"
)

// Prompt is one generation call: a system instruction, the user message and
// sampling settings.
type Prompt struct {
	System         string
	User           string
	Temperature    float64
	ThinkingBudget int
	MaxTokens      int

	// Fallback is returned when the model answers with empty text.
	Fallback string
}

const (
	lessonFallback     = "Xin lỗi, tôi chưa thể tạo giáo án lúc này. Vui lòng thử lại."
	initiativeFallback = "Xin lỗi, không thể tạo nội dung lúc này."
	placeholder        = ".................."
)

// SystemInstruction describes the expected lesson-plan style and the exact
// Markdown layout the DOCX exporter relies on: "### 3. Tiến hành" sections
// split into "####" steps with "- **Cô**:" and "- **Trẻ**:" lines.
const SystemInstruction = `
Bạn là một chuyên gia giáo dục mầm non hàng đầu, am hiểu sâu sắc Chương trình GDMN Việt Nam.
Nhiệm vụ: Soạn giáo án chi tiết, chất lượng cao, "có hồn" và đúng chuẩn hồ sơ sổ sách.

PHÂN TÍCH GIÁO ÁN MẪU (BẠN PHẢI TUÂN THỦ PHONG CÁCH NÀY):
1. **Cấu trúc tổng thể**: Một bản kế hoạch hoạt động chuẩn cần bao gồm 3 phần chính để giáo viên thực hiện trong ngày:
   - **I. Hoạt động học** (Hoạt động trọng tâm - Soạn kỹ nhất).
   - **II. Hoạt động ngoài trời** (Quan sát, vận động nhẹ - Gắn với chủ đề bài học).
   - **III. Hoạt động góc** (Thực hành, vui chơi - Gắn với chủ đề bài học).

2. **Phong cách viết**:
   - **Hoạt động của cô**: KHÔNG viết tóm tắt. Phải viết chi tiết lời thoại, câu hỏi gợi mở, lời dẫn dắt cảm xúc.
     *   *Sai*: Cô giới thiệu bài.
     *   *Đúng*: Cô đưa tranh "mâm ngũ quả" lên và hỏi: "Đây là gì các con? Mâm ngũ quả thường có trong dịp nào?".
   - **Hoạt động của trẻ**: Mô tả hành động cụ thể (Trẻ quan sát, Trẻ lắng nghe, Trẻ trả lời, Trẻ thực hiện).

3. **Định dạng Markdown (BẮT BUỘC ĐỂ TẠO FILE WORD)**:
   - Sử dụng đúng các thẻ Heading (#, ##, ###) như mẫu dưới đây.
   - Phần "Tiến hành" của cả 3 hoạt động PHẢI chia thành các bước nhỏ (####) và dùng gạch đầu dòng có in đậm (- **Cô**: ... / - **Trẻ**: ...) để phần mềm tự động kẻ bảng.

---
CẤU TRÚC GIÁO ÁN ĐẦU RA (MẪU CHUẨN):

# KẾ HOẠCH TỔ CHỨC HOẠT ĐỘNG

**Lĩnh vực**: ...
**Đề tài**: ...
**Chủ đề**: ...
**Lứa tuổi**: ...
**Thời gian**: ...
**Người thực hiện**: ...
**Đơn vị**: ...
**Ngày soạn**: ...
**Ngày dạy**: ...

## I. HOẠT ĐỘNG HỌC

### 1. Mục đích - Yêu cầu
*   **Kiến thức**: ...
*   **Kỹ năng**: ...
*   **Thái độ**: ...

### 2. Chuẩn bị
*   Đồ dùng của cô: ...
*   Đồ dùng của trẻ: ...

### 3. Tiến hành

#### 1. Hoạt động 1: Ổn định, gây hứng thú
- **Cô**: [Lời dẫn dắt tình cảm vào bài]
- **Trẻ**: [Phản hồi của trẻ]

#### 2. Hoạt động 2: [Tên nội dung trọng tâm]
- **Cô**: [Hướng dẫn chi tiết, đặt câu hỏi mở]
- **Trẻ**: ...

#### 3. Hoạt động 3: Trò chơi/Củng cố
- **Cô**: [Luật chơi, cách chơi]
- **Trẻ**: ...

#### 4. Kết thúc
- **Cô**: [Nhận xét, chuyển hoạt động]
- **Trẻ**: ...

## II. HOẠT ĐỘNG NGOÀI TRỜI

### 1. Mục đích - Yêu cầu
*   ...
### 2. Chuẩn bị
*   ...
### 3. Tiến hành

#### 1. Ổn định
- **Cô**: ...
- **Trẻ**: ...

#### 2. Hoạt động có mục đích: [Tên hoạt động quan sát/khám phá]
- **Cô**: ...
- **Trẻ**: ...

#### 3. Trò chơi vận động: [Tên trò chơi]
- **Cô**: ...
- **Trẻ**: ...

#### 4. Chơi tự do
- **Cô**: Cô bao quát trẻ chơi an toàn.

## III. HOẠT ĐỘNG GÓC

### 1. Yêu cầu
*   Trẻ biết nhập vai, đoàn kết, giữ gìn đồ chơi...
### 2. Chuẩn bị
*   Góc phân vai: ...
*   Góc xây dựng: ...
*   Góc nghệ thuật: ...
*   ... (Liệt kê các góc phù hợp chủ đề)

### 3. Tiến hành

#### 1. Thỏa thuận chơi
- **Cô**: Giới thiệu các góc, gợi ý nội dung chơi.
- **Trẻ**: ...

#### 2. Quá trình chơi
- **Cô**: Bao quát, xử lý tình huống, nhập vai chơi cùng trẻ.
- **Trẻ**: ...

#### 3. Nhận xét chơi
- **Cô**: Nhận xét, tuyên dương, cho trẻ cất dọn đồ chơi.
- **Trẻ**: ...
`

func purposeInstruction(p Purpose) string {
	switch p {
	case PurposeDaily:
		return "Giáo án dạy hàng ngày: Viết ngắn gọn, súc tích nhưng ngôn ngữ phải tự nhiên, tình cảm, dễ thực hiện ngay."
	case PurposeObservation:
		return "Giáo án thao giảng: Viết cực kỳ chi tiết, chú trọng hệ thống câu hỏi gợi mở thông minh, lời dẫn dắt hay, thể hiện kỹ năng sư phạm khéo léo."
	case PurposeCompetition:
		return "Giáo án thi Giáo viên giỏi: Viết thật trau chuốt, sáng tạo, logic chặt chẽ. Lời thoại và tình huống sư phạm phải chuẩn mực và ấn tượng."
	default:
		return "Viết giáo án phù hợp với hoạt động giáo dục, ngôn ngữ gần gũi."
	}
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return placeholder
}

// BuildLessonPrompt builds the lesson-plan prompt for req.
func BuildLessonPrompt(req LessonRequest) Prompt {
	facilities := "Ưu tiên sử dụng nguyên vật liệu mở, đồ dùng sẵn có, dễ kiếm trong tự nhiên hoặc đời sống."
	if f := strings.TrimSpace(req.Facilities); f != "" {
		facilities = fmt.Sprintf("Điều kiện lớp học: %s. Hãy thiết kế hoạt động tận dụng tốt nhất điều kiện này.", f)
	}

	var sb strings.Builder
	sb.WriteString("Cô hãy soạn giúp tôi bộ kế hoạch hoạt động này nhé:\n\n")
	sb.WriteString("THÔNG TIN HÀNH CHÍNH CẦN HIỂN THỊ Ở ĐẦU GIÁO ÁN:\n")
	fmt.Fprintf(&sb, "- Người thực hiện: %s\n", orPlaceholder(req.Author))
	fmt.Fprintf(&sb, "- Đơn vị: %s\n", orPlaceholder(req.Unit))
	fmt.Fprintf(&sb, "- Ngày soạn: %s\n", orPlaceholder(req.DatePrepared))
	fmt.Fprintf(&sb, "- Ngày dạy: %s\n", orPlaceholder(req.DateTaught))
	fmt.Fprintf(&sb, "- Chủ đề lớn: %s\n\n", orPlaceholder(req.Theme))

	fmt.Fprintf(&sb, "- Lớp: %s\n", req.AgeGroup)
	fmt.Fprintf(&sb, "- Lĩnh vực: %s\n", req.Subject)
	fmt.Fprintf(&sb, "- Đề tài (Hoạt động học): %s\n", strings.TrimSpace(req.Topic))
	fmt.Fprintf(&sb, "- Thời gian: %s phút\n", strings.TrimSpace(req.Duration))
	fmt.Fprintf(&sb, "- Mục đích: %s\n\n", req.Purpose)

	sb.WriteString("YÊU CẦU CỤ THỂ (QUAN TRỌNG):\n")
	sb.WriteString("1. **CẤU TRÚC**: Phải soạn ĐẦY ĐỦ 3 PHẦN để thành một ngày hoạt động hoàn chỉnh:\n")
	sb.WriteString("   - Phần I: Hoạt động học (Theo đề tài trên)\n")
	sb.WriteString("   - Phần II: Hoạt động ngoài trời (Gợi ý hoạt động phù hợp với chủ đề bài học)\n")
	sb.WriteString("   - Phần III: Hoạt động góc (Gợi ý các góc chơi phù hợp chủ đề)\n\n")
	fmt.Fprintf(&sb, "2. **CHẤT LƯỢNG**: %s\n\n", purposeInstruction(req.Purpose))
	fmt.Fprintf(&sb, "3. **ĐIỀU KIỆN**: %s\n\n", facilities)
	if g := strings.TrimSpace(req.Goals); g != "" {
		fmt.Fprintf(&sb, "4. Yêu cầu thêm: %s\n\n", g)
	}
	if s := strings.TrimSpace(req.Sample); s != "" {
		sb.WriteString("GIÁO ÁN MẪU THAM KHẢO (chỉ học cách trình bày và văn phong, KHÔNG chép nội dung):\n")
		sb.WriteString("<<<\n")
		sb.WriteString(s)
		sb.WriteString("\n>>>\n\n")
	}
	sb.WriteString("Lưu ý: Hãy viết như một giáo viên thực thụ. Tuyệt đối tuân thủ cấu trúc #### và - **Cô**: / - **Trẻ**: để phần mềm tạo bảng.\n")

	return Prompt{
		System:         SystemInstruction,
		User:           sb.String(),
		Temperature:    0.85,
		ThinkingBudget: 2048,
		MaxTokens:      16000,
		Fallback:       lessonFallback,
	}
}

// BuildInitiativePrompt builds the experience-initiative prompt for req. The
// report follows a fixed nine-part outline.
func BuildInitiativePrompt(req InitiativeRequest) Prompt {
	var sb strings.Builder
	sb.WriteString("HÃY ĐÓNG VAI LÀ GIÁO VIÊN MẦM NON CÓ NHIỀU KINH NGHIỆM ĐỂ VIẾT BÀI.\n\n")
	sb.WriteString("Dựa trên các thông tin sau, hãy viết một bài SÁNG KIẾN KINH NGHIỆM hoàn chỉnh:\n\n")
	fmt.Fprintf(&sb, "[TÊN SÁNG KIẾN]: %s\n", strings.TrimSpace(req.Topic))
	fmt.Fprintf(&sb, "[LĨNH VỰC]: %s\n", strings.TrimSpace(req.Field))
	fmt.Fprintf(&sb, "[ĐỐI TƯỢNG ÁP DỤNG]: Trẻ %s\n", strings.TrimSpace(req.AgeGroup))
	fmt.Fprintf(&sb, "[ĐƠN VỊ CÔNG TÁC]: %s (Người thực hiện: %s)\n", orPlaceholder(req.Unit), orPlaceholder(req.Role))
	sb.WriteString("[THỰC TRẠNG]:\n")
	fmt.Fprintf(&sb, "  - Thuận lợi: %s\n", orPlaceholder(req.Advantages))
	fmt.Fprintf(&sb, "  - Khó khăn: %s\n", orPlaceholder(req.Disadvantages))
	fmt.Fprintf(&sb, "[BIỆN PHÁP]: %s\n", strings.TrimSpace(req.Measures))
	fmt.Fprintf(&sb, "[HIỆU QUẢ]: %s\n\n", orPlaceholder(req.Results))

	sb.WriteString("----------------------------\n")
	sb.WriteString("YÊU CẦU CẤU TRÚC (BẮT BUỘC 9 MỤC):\n")
	for i, s := range initiativeOutline {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}
	sb.WriteString("----------------------------\n\n")

	sb.WriteString("YÊU CẦU NỘI DUNG & VĂN PHONG:\n")
	sb.WriteString("1. Văn phong hành chính – khoa học nhưng phải \"đời\", giống giáo viên viết.\n")
	sb.WriteString("2. Tuyệt đối KHÔNG dùng từ ngữ sáo rỗng, hoa mỹ, lý thuyết suông.\n")
	sb.WriteString("3. Có dẫn chứng thực tế, ví dụ cụ thể về hoạt động, trò chơi, tình huống sư phạm.\n")
	sb.WriteString("4. Không phóng đại thành tích.\n")
	sb.WriteString("5. Ngôn ngữ mạch lạc, chân thực, tránh lặp từ.\n")
	sb.WriteString("6. Biện pháp phải gắn liền với thực trạng đã nêu.\n\n")
	sb.WriteString("HÃY TỰ KIỂM TRA TRƯỚC KHI TRẢ VỀ KẾT QUẢ:\n")
	sb.WriteString("- Nội dung có đúng cấu trúc 9 mục không?\n")
	sb.WriteString("- Biện pháp có giải quyết được khó khăn không?\n")
	sb.WriteString("- Hiệu quả có đo đếm được không?\n\n")
	sb.WriteString("(Lưu ý: Chỉ trả về nội dung bài viết, không bao gồm lời dẫn của AI)\n")

	return Prompt{
		User:           sb.String(),
		Temperature:    0.7,
		ThinkingBudget: 2048,
		MaxTokens:      16000,
		Fallback:       initiativeFallback,
	}
}

var initiativeOutline = []string{
	"Tên sáng kiến",
	"Lĩnh vực áp dụng",
	"Người thực hiện",
	"Đơn vị công tác",
	"Lý do chọn đề tài",
	"Thực trạng trước khi áp dụng",
	"Các biện pháp thực hiện (Phần trọng tâm - Viết chi tiết, chia thành các biện pháp nhỏ, có ví dụ minh họa)",
	"Hiệu quả đạt được (Cụ thể trên trẻ, giáo viên và nhà trường)",
	"Kiến nghị – đề xuất",
}
