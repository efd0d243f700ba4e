package vision

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Formats understood by DefaultDecoder.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder decides whether a stream holds an image.
// An error from DecodeConfig means the stream is not a decodable image,
// unless the underlying reader itself failed; the scanner tells the two
// apart and reports read failures as ErrStorageError.
type Decoder interface {
	// DecodeConfig reads the image header and returns its dimensions and format name.
	DecodeConfig(r io.Reader) (image.Config, string, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (image.Config, string, error)

// DecodeConfig calls f(r).
func (f DecoderFunc) DecodeConfig(r io.Reader) (image.Config, string, error) {
	return f(r)
}

// DefaultDecoder returns a Decoder backed by the image package registry:
// JPEG, PNG, GIF, BMP, TIFF and WebP. Only the header is decoded.
func DefaultDecoder() Decoder {
	return DecoderFunc(image.DecodeConfig)
}

// readRecorder remembers the first non-EOF error returned by the wrapped reader.
type readRecorder struct {
	r   io.Reader
	err error
}

func (rr *readRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// checkImage opens path and runs it through dec.
// Returns an ErrStorageError-wrapped error when the file cannot be opened or
// read, and an ErrInvalidCollection/ErrNotImage-wrapped error when the bytes
// are not an image.
func checkImage(path string, dec Decoder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorageError, path, err)
	}
	defer f.Close()

	return checkReader(path, f, dec)
}

// checkReader runs r through dec, blaming the reader rather than the
// contents when a read failed along the way.
func checkReader(name string, r io.Reader, dec Decoder) error {
	rr := &readRecorder{r: r}
	if _, _, err := dec.DecodeConfig(rr); err != nil {
		if rr.err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrStorageError, name, rr.err)
		}
		return fmt.Errorf("%w: %s: %w (%v)", ErrInvalidCollection, name, ErrNotImage, err)
	}
	return nil
}
