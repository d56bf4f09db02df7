package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ResumeParser saves uploaded resume files and extracts their text.
type ResumeParser struct {
	uploadsDir string
}

// ParsedResume is the raw output of file parsing, before LLM extraction.
type ParsedResume struct {
	Filename string
	FileType string
	FileSize int64
	FullText string
}

func NewResumeParser(uploadsDir string) *ResumeParser {
	return &ResumeParser{
		uploadsDir: uploadsDir,
	}
}

// ParseFile extracts text from PDF/DOCX/TXT files.
func (p *ResumeParser) ParseFile(filename string, reader io.Reader) (*ParsedResume, error) {
	filePath := filepath.Join(p.uploadsDir, filepath.Base(filename))
	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileType := strings.ToLower(filepath.Ext(filename))
	var text string

	switch fileType {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}

	return &ParsedResume{
		Filename: filename,
		FileType: fileType,
		FileSize: size,
		FullText: text,
	}, nil
}
