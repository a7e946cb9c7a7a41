package dsp

// Reference defilter kernel. This is the PNG specification written out as
// plain scalar loops and is what every other kernel is tested against.
//
// Rows are addressed through two offsets into the single buffer: po points at
// the current row's payload (just past the filter byte) and uo at the
// previous row's payload. The first row has no previous row; its Up, Avg and
// Paeth cases use the degenerate arithmetic of an all-zero row above, which
// reduces Up to a no-op, Avg to half-Sub, and Paeth to Sub.

// DefilterRef reverses the per-scanline filters of p in place.
func DefilterRef(p []byte, h, bpp, bpl uint32) {
	n := bpl - 1 // pixel payload bytes per row

	off := uint32(0)
	for y := uint32(0); y < h; y++ {
		po := off + 1
		uo := po - bpl // valid only when y > 0
		filter := uint32(p[off])

		switch filter {
		case FilterNone:
			// Nothing to do.

		case FilterSub:
			for i := bpp; i < n; i++ {
				p[po+i] = sum8(uint32(p[po+i]), uint32(p[po+i-bpp]))
			}

		case FilterUp:
			if y > 0 {
				for i := uint32(0); i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i]))
				}
			}

		case FilterAvg:
			if y > 0 {
				for i := uint32(0); i < bpp; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i])>>1)
				}
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), avg(uint32(p[po+i-bpp]), uint32(p[uo+i])))
				}
			} else {
				avgFirstRow(p, po, n, bpp)
			}

		case FilterPaeth:
			if y > 0 {
				for i := uint32(0); i < bpp; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[uo+i]))
				}
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]),
						paethRef(uint32(p[po+i-bpp]), uint32(p[uo+i]), uint32(p[uo+i-bpp])))
				}
			} else {
				// Paeth with a zero row above predicts the left byte.
				for i := bpp; i < n; i++ {
					p[po+i] = sum8(uint32(p[po+i]), uint32(p[po+i-bpp]))
				}
			}
		}

		off += bpl
	}
}
