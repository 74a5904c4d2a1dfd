package mediasvc

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/takanag/nenga/core"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

type (
	// ProcessedImage carries the public URLs of a card upload's
	// derivatives.
	ProcessedImage struct {
		ImageURL     string `json:"imageUrl"`
		ThumbnailURL string `json:"thumbnailUrl"`
	}

	// Processor turns raw uploads into fixed-width JPEG derivatives.
	// Whatever comes in (JPEG, PNG, GIF, WebP), a JPEG comes out.
	Processor struct {
		store core.FileStore
		conf  *core.Config
	}
)

func NewProcessor(store core.FileStore, conf *core.Config) *Processor {
	return &Processor{store: store, conf: conf}
}

func decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	return img, nil
}

// scaleToWidth shrinks img to maxWidth, keeping the aspect ratio. Images
// already narrower are left at their size.
func scaleToWidth(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxWidth {
		return img
	}
	height := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func (p *Processor) encodeAndSave(img image.Image, relPath string) (string, error) {
	var buff bytes.Buffer
	if err := jpeg.Encode(&buff, img, &jpeg.Options{Quality: p.conf.Media.JPEGQuality}); err != nil {
		return "", errors.Wrap(err, "encoding jpeg")
	}
	return p.store.Save(relPath, buff.Bytes(), "image/jpeg")
}

// ProcessCardImage produces the display image and its thumbnail.
func (p *Processor) ProcessCardImage(data []byte) (ProcessedImage, error) {
	img, err := decode(data)
	if err != nil {
		return ProcessedImage{}, err
	}

	name := uuid.New().String()
	imageURL, err := p.encodeAndSave(scaleToWidth(img, p.conf.Media.ImageMaxWidth), "cards/"+name+".jpg")
	if err != nil {
		return ProcessedImage{}, err
	}
	thumbURL, err := p.encodeAndSave(scaleToWidth(img, p.conf.Media.ThumbMaxWidth), "cards/"+name+"_thumb.jpg")
	if err != nil {
		return ProcessedImage{}, err
	}
	return ProcessedImage{ImageURL: imageURL, ThumbnailURL: thumbURL}, nil
}

// ProcessHeaderImage produces the wide header background derivative.
func (p *Processor) ProcessHeaderImage(data []byte) (string, error) {
	img, err := decode(data)
	if err != nil {
		return "", err
	}
	name := uuid.New().String()
	return p.encodeAndSave(scaleToWidth(img, p.conf.Media.HeaderMaxWidth), "headers/"+name+".jpg")
}
