// Package depng provides the hot path of a PNG decoder: fast reversal of the
// per-scanline filter step applied to the already-decompressed image data.
//
// Three interchangeable kernels share one signature and produce byte-for-byte
// identical output:
//
//   - DefilterRef, a direct translation of the PNG specification
//   - DefilterOpt, specialized per bytes-per-pixel value
//   - DefilterSIMD, a 128-bit vector implementation
//
// The package also carries a thin decoder shell (Decode, DecodeConfig) that
// parses the PNG container, inflates the image data and runs the selected
// kernel, for non-interlaced images with 8- or 16-bit gray, gray+alpha, RGB
// and RGBA pixels. It registers itself with the standard library's image
// package.
//
// Reversing a filtered buffer in place:
//
//	depng.Defilter(buf, h, bpp, bpl)
//
// Decoding a file:
//
//	img, err := depng.Decode(reader)
package depng
