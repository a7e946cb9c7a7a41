package depng

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/deepteams/depng/internal/container"
	"github.com/deepteams/depng/internal/dsp"
	"github.com/deepteams/depng/internal/pool"
)

func init() {
	image.RegisterFormat("png", "\x89PNG\r\n\x1a\n", Decode, DecodeConfig)
}

// Errors returned by the decoder. Container-level errors
// (container.ErrBadCRC and friends) are wrapped and pass errors.Is.
var (
	ErrUnsupported   = container.ErrUnsupported
	ErrInvalidFilter = errors.New("depng: invalid filter byte")
)

// FilterFunc is the kernel signature shared by the three implementations.
// p holds h rows of bpl bytes, each row one filter byte followed by w*bpp
// pixel bytes; the filters are reversed in place.
type FilterFunc = dsp.FilterFunc

// The three kernels. All produce identical output; they differ only in how
// the inner loops are built. Preconditions (h >= 1, bpl == w*bpp+1, bpp in
// {1,2,3,4,6,8}, len(p) >= h*bpl) are not validated.
var (
	DefilterRef  FilterFunc = dsp.DefilterRef
	DefilterOpt  FilterFunc = dsp.DefilterOpt
	DefilterSIMD FilterFunc = dsp.DefilterSIMD
)

// Defilter is the kernel the decoder uses, the vector implementation by
// default. Reassign it to change the trade-off for all subsequent decodes.
var Defilter FilterFunc = dsp.Defilter

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of
// the repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, err
			}
			return data, nil
		}
	}
	return io.ReadAll(r)
}

// Decode reads a PNG image from r. Supported are non-interlaced images with
// 8- or 16-bit gray, gray+alpha, RGB and RGBA pixels; anything else returns
// ErrUnsupported. The filter reversal runs through the Defilter kernel.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}

	p, err := container.NewParser(data)
	if err != nil {
		return nil, err
	}
	hdr := p.Header()

	buf, err := inflate(p.IDAT(), hdr)
	if err != nil {
		return nil, err
	}

	bpp := hdr.Bpp()
	bpl := hdr.Bpl()

	// Screen the filter bytes before the kernels run; the kernels themselves
	// treat them as trusted.
	for y := uint32(0); y < hdr.Height; y++ {
		if f := buf[y*bpl]; f >= dsp.FilterCount {
			pool.Put(buf)
			return nil, fmt.Errorf("%w: %d at row %d", ErrInvalidFilter, f, y)
		}
	}

	Defilter(buf, hdr.Height, bpp, bpl)

	img := toImage(buf, hdr)
	pool.Put(buf)
	return img, nil
}

// DecodeConfig returns the color model and dimensions of a PNG image without
// decoding the image data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, err
	}

	hdr, err := container.ParseHeader(data)
	if err != nil {
		return image.Config{}, err
	}

	var model color.Model
	switch {
	case hdr.ColorType == container.ColorGray && hdr.BitDepth == 8:
		model = color.GrayModel
	case hdr.ColorType == container.ColorGray && hdr.BitDepth == 16:
		model = color.Gray16Model
	case hdr.BitDepth == 16:
		model = color.NRGBA64Model
	default:
		model = color.NRGBAModel
	}

	return image.Config{
		ColorModel: model,
		Width:      int(hdr.Width),
		Height:     int(hdr.Height),
	}, nil
}

// inflate decompresses the IDAT stream into exactly h*bpl bytes.
func inflate(idat []byte, hdr container.IHDR) ([]byte, error) {
	size := uint64(hdr.Height) * uint64(hdr.Bpl())
	if size > 1<<31 {
		return nil, container.ErrInvalidImage
	}

	zr, err := zlib.NewReader(bytes.NewReader(idat))
	if err != nil {
		return nil, fmt.Errorf("depng: inflate: %w", err)
	}
	defer zr.Close()

	// The scanline buffer only lives until the pixels are repacked, so it
	// comes from the bucketed pool rather than a fresh allocation.
	buf := pool.Get(int(size))
	if _, err := io.ReadFull(zr, buf); err != nil {
		pool.Put(buf)
		return nil, fmt.Errorf("depng: inflate: %w", err)
	}
	return buf, nil
}

// toImage converts the defiltered scanlines to the closest standard image
// type. Gray images map directly; everything else lands in NRGBA or NRGBA64
// (both PNG samples and the 16-bit Pix layouts are big-endian, so 16-bit
// channels copy through).
func toImage(buf []byte, hdr container.IHDR) image.Image {
	w := int(hdr.Width)
	h := int(hdr.Height)
	bpl := int(hdr.Bpl())

	row := func(y int) []byte { return buf[y*bpl+1 : (y+1)*bpl] }

	switch {
	case hdr.ColorType == container.ColorGray && hdr.BitDepth == 8:
		img := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:], row(y))
		}
		return img

	case hdr.ColorType == container.ColorGray && hdr.BitDepth == 16:
		img := image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:], row(y))
		}
		return img

	case hdr.ColorType == container.ColorGrayAlpha && hdr.BitDepth == 8:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			src := row(y)
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				g, a := src[2*x], src[2*x+1]
				dst[4*x+0] = g
				dst[4*x+1] = g
				dst[4*x+2] = g
				dst[4*x+3] = a
			}
		}
		return img

	case hdr.ColorType == container.ColorGrayAlpha && hdr.BitDepth == 16:
		img := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			src := row(y)
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				ghi, glo := src[4*x], src[4*x+1]
				ahi, alo := src[4*x+2], src[4*x+3]
				dst[8*x+0], dst[8*x+1] = ghi, glo
				dst[8*x+2], dst[8*x+3] = ghi, glo
				dst[8*x+4], dst[8*x+5] = ghi, glo
				dst[8*x+6], dst[8*x+7] = ahi, alo
			}
		}
		return img

	case hdr.ColorType == container.ColorTrueColor && hdr.BitDepth == 8:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			src := row(y)
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				dst[4*x+0] = src[3*x+0]
				dst[4*x+1] = src[3*x+1]
				dst[4*x+2] = src[3*x+2]
				dst[4*x+3] = 0xFF
			}
		}
		return img

	case hdr.ColorType == container.ColorTrueColor && hdr.BitDepth == 16:
		img := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			src := row(y)
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				copy(dst[8*x:8*x+6], src[6*x:6*x+6])
				dst[8*x+6] = 0xFF
				dst[8*x+7] = 0xFF
			}
		}
		return img

	case hdr.ColorType == container.ColorTrueAlpha && hdr.BitDepth == 8:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:], row(y))
		}
		return img

	default: // ColorTrueAlpha, 16-bit
		img := image.NewNRGBA64(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			copy(img.Pix[y*img.Stride:], row(y))
		}
		return img
	}
}
