package refdoc

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor handles plain text files. Lines are kept as they are so a
// pasted Markdown plan keeps its headings.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (*Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := &Sample{Title: titleFromFilename(filename)}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		level := headingPrefix(line)
		if level > 0 {
			line = line[level+1:]
		}
		s.add(Block{Level: level, Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// headingPrefix returns n for a line starting with n '#' and a space.
func headingPrefix(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
