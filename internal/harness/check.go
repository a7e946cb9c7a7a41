// Package harness verifies and times the defilter kernels against the
// reference implementation. Check sweeps an exhaustive grid of small images
// and compares kernel outputs byte for byte; Bench times each kernel over a
// fixed workload. Both report through zerolog so failures carry their full
// (w, h, bpp, filter) coordinates as structured fields.
package harness

import (
	"github.com/rs/zerolog"

	"github.com/deepteams/depng/internal/dsp"
	"github.com/deepteams/depng/internal/pool"
)

// checkBpp is the bpp sweep order, matching dsp.SupportedBpp.
var checkBpp = dsp.SupportedBpp

// Check runs candidate against ref over filter in [0, 5] (5 cycles filters
// per row), h in [1, 20), w in [1, 100) and every supported bpp. For each
// tuple the same seed generates two identical images; both kernels run and
// the buffers must match exactly. Returns false on the first mismatch.
func Check(log zerolog.Logger, name string, ref, candidate dsp.FilterFunc) bool {
	log.Info().Str("impl", name).Msg("check")

	seed := uint32(0)
	for filter := uint32(0); filter <= dsp.FilterCount; filter++ {
		for h := uint32(1); h < 20; h++ {
			for w := uint32(1); w < 100; w++ {
				for _, bpp := range checkBpp {
					bpl := w*bpp + 1
					size := int(bpl * h)

					a := pool.Get(size)
					b := pool.Get(size)
					dsp.RandImageInto(a, w, h, bpp, filter, seed)
					dsp.RandImageInto(b, w, h, bpp, filter, seed)

					ref(a, h, bpp, bpl)
					candidate(b, h, bpp, bpl)

					ok := compare(log, name, a, b, w, h, bpp, bpl)
					pool.Put(a)
					pool.Put(b)
					if !ok {
						return false
					}

					seed++
				}
			}
		}
	}

	return true
}

// compare walks both buffers row by row. The filter bytes must agree and be
// valid; every payload byte must match. The first difference is reported
// with its full coordinates and the names of the filter that produced it.
func compare(log zerolog.Logger, name string, a, b []byte, w, h, bpp, bpl uint32) bool {
	if bpl != w*bpp+1 {
		log.Error().Str("impl", name).
			Uint32("bpl", bpl).Uint32("bpp", bpp).Uint32("w", w).
			Msg("invalid bpl for geometry")
		return false
	}

	off := uint32(0)
	for y := uint32(0); y < h; y++ {
		aFilter := uint32(a[off])
		bFilter := uint32(b[off])

		if aFilter != bFilter {
			log.Error().Str("impl", name).
				Uint32("w", w).Uint32("h", h).Uint32("bpp", bpp).Uint32("bpl", bpl).
				Uint32("y", y).
				Uint32("expected", aFilter).Uint32("actual", bFilter).
				Msg("filter byte mismatch")
			return false
		}
		if aFilter >= dsp.FilterCount {
			log.Error().Str("impl", name).
				Uint32("w", w).Uint32("h", h).Uint32("bpp", bpp).Uint32("bpl", bpl).
				Uint32("y", y).Uint32("filter", aFilter).
				Msg("invalid filter byte")
			return false
		}

		off++
		for x := uint32(0); x < w; x++ {
			for i := uint32(0); i < bpp; i++ {
				av := a[off+i]
				bv := b[off+i]
				if av != bv {
					log.Error().Str("impl", name).
						Uint32("w", w).Uint32("h", h).Uint32("bpp", bpp).Uint32("bpl", bpl).
						Uint32("y", y).Uint32("x", x).Uint32("byte", i).
						Uint8("expected", av).Uint8("actual", bv).
						Str("filter", dsp.FilterNames[aFilter]).
						Msg("pixel mismatch")
					return false
				}
			}
			off += bpp
		}
	}

	return true
}
