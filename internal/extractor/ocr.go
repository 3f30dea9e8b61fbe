package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// IsOCRAvailable reports whether the external tools extractWithOCR
// depends on (pdftoppm, tesseract) are installed.
func IsOCRAvailable() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	return true
}

// extractWithOCR converts PDF pages to images and runs Tesseract OCR.
// This handles scanned/image-based PDFs that have no text layer. It is
// the last tier of ExtractText's fallback cascade, and the coordinates
// it implies for tokens are synthetic (see stream.go).
func extractWithOCR(filePath string) ([]string, error) {
	if !IsOCRAvailable() {
		return nil, fmt.Errorf("OCR tools not available (install poppler-utils and tesseract-ocr)")
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// -r 300 = 300 DPI for good OCR quality, -png = PNG format output
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", "300", "-png", filePath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %v", err)
	}

	var imageFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			imageFiles = append(imageFiles, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(imageFiles)

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	var pages []string
	for _, imgFile := range imageFiles {
		outBase := strings.TrimSuffix(imgFile, ".png") + "-ocr"
		// PSM 4 = assume single column of text of variable sizes, good for statements
		cmd := exec.Command("tesseract", imgFile, outBase, "-l", "eng", "--psm", "4")
		if out, err := cmd.CombinedOutput(); err != nil {
			fmt.Fprintf(os.Stderr, "tesseract warning for %s: %v (output: %s)\n", imgFile, err, string(out))
			continue
		}

		data, err := os.ReadFile(outBase + ".txt")
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no text from %d page images", len(imageFiles))
	}
	return pages, nil
}

// getPageCountForOCR returns the number of pages in a PDF using pdfinfo,
// or 0 if the file or tool is unavailable.
func getPageCountForOCR(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil {
				return n
			}
		}
	}
	return 0
}
