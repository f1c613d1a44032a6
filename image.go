package htmlshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
)

// Image holds one rendered PNG together with its output name and the slice
// of the container it shows.
//
// It is safe to call its methods multiple times; the underlying data is
// never modified.
type Image struct {
	Name    string
	Part    int // 1-based part number, 0 for a whole-page capture
	Segment Segment
	data    []byte
}

// NewImage wraps PNG bytes. It is mostly useful to feed [Stitch] or a
// custom [Sink] in tests.
func NewImage(name string, part int, seg Segment, data []byte) *Image {
	return &Image{Name: name, Part: part, Segment: seg, data: data}
}

// Bytes returns the raw PNG content.
func (i *Image) Bytes() []byte {
	return i.data
}

// Base64 returns the PNG encoded as a standard base64 string (RFC 4648).
func (i *Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.data)
}

// DataURL returns the PNG as a data: URL, ready for an <img> or <a download>.
func (i *Image) DataURL() string {
	return "data:image/png;base64," + i.Base64()
}

// Reader returns an [*bytes.Reader] over the PNG content.
func (i *Image) Reader() *bytes.Reader {
	return bytes.NewReader(i.data)
}

// WriteTo writes the full PNG content to w. It implements [io.WriterTo].
func (i *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(i.data)
	return int64(n), err
}

// WriteToFile writes the PNG to the file at path, creating it if needed.
func (i *Image) WriteToFile(path string, perm os.FileMode) error {
	return os.WriteFile(path, i.data, perm)
}

// Len returns the size of the PNG in bytes.
func (i *Image) Len() int {
	return len(i.data)
}

// Size decodes the PNG header and returns the pixel dimensions.
func (i *Image) Size() (width, height int, err error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(i.data))
	if err != nil {
		return 0, 0, fmt.Errorf("htmlshot: decoding %s: %w", i.Name, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode decodes the full PNG.
func (i *Image) Decode() (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(i.data))
	if err != nil {
		return nil, fmt.Errorf("htmlshot: decoding %s: %w", i.Name, err)
	}
	return img, nil
}
