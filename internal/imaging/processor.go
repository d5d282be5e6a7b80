// Package imaging проверяет загружаемые изображения, уменьшает их и перекодирует в WebP.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Format — распознанный тип файла.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatGIF  Format = "gif"
	FormatSVG  Format = "svg"
)

var (
	ErrEmptyFile       = errors.New("пустой файл")
	ErrTooLarge        = errors.New("файл превышает допустимый размер")
	ErrUnsupportedType = errors.New("неподдерживаемый тип файла")
	ErrDecode          = errors.New("не удалось прочитать изображение")
)

// Profile задаёт ограничения и параметры кодирования для одного вида загрузок.
type Profile struct {
	MaxWidth     int
	MaxHeight    int
	Quality      int
	MaxBytes     int64
	AllowedTypes []Format
}

// ImageProfile — изображения сущностей каталога.
func ImageProfile(maxSize, quality int) Profile {
	return Profile{
		MaxWidth:     maxSize,
		MaxHeight:    maxSize,
		Quality:      quality,
		MaxBytes:     10 << 20,
		AllowedTypes: []Format{FormatJPEG, FormatPNG, FormatWEBP, FormatGIF},
	}
}

// LogoProfile — логотипы, дополнительно принимает SVG.
func LogoProfile(maxSize, quality int) Profile {
	return Profile{
		MaxWidth:     maxSize,
		MaxHeight:    maxSize,
		Quality:      quality,
		MaxBytes:     5 << 20,
		AllowedTypes: []Format{FormatJPEG, FormatPNG, FormatWEBP, FormatGIF, FormatSVG},
	}
}

func (p Profile) allows(f Format) bool {
	for _, allowed := range p.AllowedTypes {
		if allowed == f {
			return true
		}
	}
	return false
}

// Result — итоговые байты, которые пойдут в хранилище.
type Result struct {
	Data     []byte
	Format   Format
	Ext      string
	MimeType string
	Width    int
	Height   int
}

// Processor обрабатывает изображения согласно профилю.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Process проверяет файл и приводит его к итоговому виду.
// GIF и SVG сохраняются как есть, остальные растровые форматы уменьшаются и кодируются в WebP.
func (p *Processor) Process(data []byte, originalName string, profile Profile) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if profile.MaxBytes > 0 && int64(len(data)) > profile.MaxBytes {
		return nil, fmt.Errorf("%w: %d КБ", ErrTooLarge, profile.MaxBytes>>10)
	}

	format, ok := DetectFormat(data, originalName)
	if !ok || !profile.allows(format) {
		return nil, ErrUnsupportedType
	}

	switch format {
	case FormatSVG:
		return &Result{Data: data, Format: FormatSVG, Ext: "svg", MimeType: "image/svg+xml"}, nil
	case FormatGIF:
		cfg, err := gif.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return &Result{Data: data, Format: FormatGIF, Ext: "gif", MimeType: "image/gif", Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	img = scaleDown(img, profile.MaxWidth, profile.MaxHeight)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(profile.Quality)}); err != nil {
		return nil, fmt.Errorf("imaging: encode webp: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:     buf.Bytes(),
		Format:   FormatWEBP,
		Ext:      "webp",
		MimeType: "image/webp",
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

// DetectFormat определяет тип по сигнатуре. SVG не имеет сигнатуры,
// поэтому распознаётся по расширению и наличию тега <svg в начале файла.
func DetectFormat(data []byte, originalName string) (Format, bool) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		switch kind.Extension {
		case "jpg":
			return FormatJPEG, true
		case "png":
			return FormatPNG, true
		case "webp":
			return FormatWEBP, true
		case "gif":
			return FormatGIF, true
		}
		return "", false
	}

	if strings.EqualFold(filepath.Ext(originalName), ".svg") && looksLikeSVG(data) {
		return FormatSVG, true
	}
	return "", false
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("<svg"))
}

// scaleDown вписывает изображение в maxW×maxH с сохранением пропорций. Увеличение не выполняется.
func scaleDown(img image.Image, maxW, maxH int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if maxW <= 0 {
		maxW = width
	}
	if maxH <= 0 {
		maxH = height
	}
	if width <= maxW && height <= maxH {
		return img
	}

	ratio := math.Min(float64(maxW)/float64(width), float64(maxH)/float64(height))
	newWidth := max(1, int(math.Round(float64(width)*ratio)))
	newHeight := max(1, int(math.Round(float64(height)*ratio)))

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
