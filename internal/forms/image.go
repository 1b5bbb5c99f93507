package forms

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

const InvalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

var (
	ErrInvalidImage  = errors.New(InvalidImageMessage)
	ErrImageTooLarge = errors.New("image is too large")
)

var allowedImageTypes = []string{"image/gif", "image/jpeg", "image/png"}

// Image is an uploaded file that passed sniffing and decoding.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Filename    string
}

func ImageTooLargeMessage(maxSize int64) string {
	return fmt.Sprintf("Image must not exceed %d MB.", maxSize/(1024*1024))
}

// ReadImage loads and verifies an uploaded image. maxSize <= 0 disables the
// size check.
func ReadImage(fh *multipart.FileHeader, maxSize int64) (*Image, error) {
	if maxSize > 0 && fh.Size > maxSize {
		return nil, ErrImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxSize > 0 {
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrImageTooLarge
	}
	return ParseImage(data, fh.Filename)
}

// ParseImage checks the bytes really are a GIF, JPEG or PNG image.
func ParseImage(data []byte, filename string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	mt := mimetype.Detect(data)
	allowed := false
	for _, t := range allowedImageTypes {
		if mt.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, ErrInvalidImage
	}
	return &Image{
		Data:        data,
		ContentType: mt.String(),
		Ext:         mt.Extension(),
		Filename:    filename,
	}, nil
}
