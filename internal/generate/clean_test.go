package generate

import "testing"

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "  # Kế hoạch\n\nNội dung  ", "# Kế hoạch\n\nNội dung"},
		{"markdown fence", "```markdown\n# Kế hoạch\n- **Cô**: Chào\n```", "# Kế hoạch\n- **Cô**: Chào"},
		{"bare fence", "```\nNội dung\n```", "Nội dung"},
		{"br tags", "Dòng 1<br>Dòng 2<br/>Dòng 3", "Dòng 1\nDòng 2\nDòng 3"},
		{"inline tags", "<b>Cô</b>: hỏi <span style=\"color:red\">trẻ</span>", "Cô: hỏi trẻ"},
		{"script dropped", "A<script>alert(1)</script>B", "AB"},
		{"less-than kept", "Trẻ < 5 tuổi & cô", "Trẻ < 5 tuổi & cô"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanOutput(tt.in); got != tt.want {
				t.Errorf("CleanOutput(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
