package fsutil

import (
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OpenText opens a UTF-8 text file for reading with any byte order mark removed.
// UTF-16 files with a BOM are decoded to UTF-8.
func OpenText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return &textReader{Reader: transform.NewReader(f, decoder), file: f}, nil
}

// ReadText reads a whole text file through OpenText.
func ReadText(path string) ([]byte, error) {
	r, err := OpenText(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return io.ReadAll(r)
}

type textReader struct {
	io.Reader
	file *os.File
}

func (r *textReader) Close() error {
	return r.file.Close()
}
