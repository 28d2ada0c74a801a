package frame

// plane is one image plane with its row pitch.
type plane struct {
	pix           []byte
	width, height int
	stride        int
}

// ScaleI420 returns a copy of an I420 frame resized to width x height by
// averaging the source area behind each output pixel. Upscaling and non-I420
// frames return nil. Source bytes past the end of a short plane are skipped.
func (f *VideoFrame) ScaleI420(width, height int) *VideoFrame {
	if f.Type != VideoPixelI420 || width <= 0 || height <= 0 || width > f.Width || height > f.Height {
		return nil
	}
	if width == f.Width && height == f.Height {
		return f.Clone()
	}

	dst := NewI420Frame(width, height)
	dst.Rotation = f.Rotation
	dst.RenderTimeMs = f.RenderTimeMs
	dst.AvsyncType = f.AvsyncType

	cw, ch := (f.Width+1)/2, (f.Height+1)/2
	dcw, dch := (width+1)/2, (height+1)/2
	pairs := [3][2]plane{
		{{f.YBuffer, f.Width, f.Height, f.YStride}, {dst.YBuffer, width, height, dst.YStride}},
		{{f.UBuffer, cw, ch, f.UStride}, {dst.UBuffer, dcw, dch, dst.UStride}},
		{{f.VBuffer, cw, ch, f.VStride}, {dst.VBuffer, dcw, dch, dst.VStride}},
	}

	for _, p := range pairs {
		src, out := p[0], p[1]
		// Column spans are the same for every row of a plane.
		cols := make([]int, out.width+1)
		for x := range cols {
			cols[x] = x * src.width / out.width
		}
		for y := 0; y < out.height; y++ {
			top, bottom := y*src.height/out.height, (y+1)*src.height/out.height
			bottom = max(bottom, top+1)
			for x := 0; x < out.width; x++ {
				left, right := cols[x], max(cols[x+1], cols[x]+1)
				sum, n := 0, 0
				for sy := top; sy < bottom; sy++ {
					row := sy * src.stride
					for sx := left; sx < right && row+sx < len(src.pix); sx++ {
						sum += int(src.pix[row+sx])
						n++
					}
				}
				if n > 0 {
					out.pix[y*out.stride+x] = byte((sum + n/2) / n)
				}
			}
		}
	}
	return dst
}
