package imaging

import "fmt"

// Matrix is the destination of GetAsMatrix: a dense, row-major matrix of
// float64 values. The image package only fills it.
type Matrix interface {
	// Reset resizes the matrix to rows x cols. Previous contents may be lost.
	Reset(rows, cols int)
	// Set stores v at (row, col).
	Set(row, col int, v float64)
}

// Dense is a simple row-major Matrix.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense returns a zeroed rows x cols matrix.
func NewDense(rows, cols int) *Dense {
	m := &Dense{}
	m.Reset(rows, cols)
	return m
}

// Reset implements Matrix. The backing slice is reused when large enough.
func (m *Dense) Reset(rows, cols int) {
	n := rows * cols
	if cap(m.data) < n {
		m.data = make([]float64, n)
	} else {
		m.data = m.data[:n]
		clear(m.data)
	}
	m.rows, m.cols = rows, cols
}

// Set implements Matrix.
func (m *Dense) Set(row, col int, v float64) { m.data[row*m.cols+col] = v }

// At returns the value at (row, col).
func (m *Dense) At(row, col int) float64 { return m.data[row*m.cols+col] }

// Dims returns the number of rows and columns.
func (m *Dense) Dims() (rows, cols int) { return m.rows, m.cols }

// Row returns row r. The slice aliases the matrix.
func (m *Dense) Row(r int) []float64 { return m.data[r*m.cols : (r+1)*m.cols] }

// WholeExtent passed as width or height to GetAsMatrix and GetAsRGBMatrices
// selects everything from the origin to the image edge.
const WholeExtent = -1

// GetAsMatrix fills out with the samples of the w x h region whose top-left
// corner is (x0, y0). One matrix row holds one image row.
//
// Gray images are copied as is. RGB images require asGrayscale and are
// reduced with Luma; use GetAsRGBMatrices for per-channel values. With
// normalize set, values are divided by the depth's maximum so they fall in
// [0,1]. A deferred image is loaded first.
func (i *Image) GetAsMatrix(out Matrix, asGrayscale bool, x0, y0, w, h int, normalize bool) error {
	buf, err := i.Buffer()
	if err != nil {
		return err
	}
	s := buf.shape
	if s.Channels == 3 && !asGrayscale {
		return fmt.Errorf("%w: color image needs grayscale reduction for a single matrix", ErrInvalidState)
	}
	w, h, err = region(s, x0, y0, w, h)
	if err != nil {
		return err
	}

	scale := 1.0
	if normalize {
		scale = 1 / s.Depth.MaxValue()
	}
	pb := s.PixelBytes()
	out.Reset(h, w)
	for r := 0; r < h; r++ {
		row := buf.Row(y0 + r)
		for c := 0; c < w; c++ {
			off := (x0 + c) * pb
			out.Set(r, c, float64(lumaOf(row[off:off+pb], s.Depth))*scale)
		}
	}
	return nil
}

// GetAsRGBMatrices fills one matrix per channel for the given region. A gray
// image yields three identical matrices. Arguments follow GetAsMatrix.
func (i *Image) GetAsRGBMatrices(red, green, blue Matrix, x0, y0, w, h int, normalize bool) error {
	buf, err := i.Buffer()
	if err != nil {
		return err
	}
	s := buf.shape
	w, h, err = region(s, x0, y0, w, h)
	if err != nil {
		return err
	}

	scale := 1.0
	if normalize {
		scale = 1 / s.Depth.MaxValue()
	}
	n := s.Depth.BytesPerSample()
	pb := s.PixelBytes()
	outs := []Matrix{red, green, blue}
	for _, m := range outs {
		m.Reset(h, w)
	}
	for r := 0; r < h; r++ {
		row := buf.Row(y0 + r)
		for c := 0; c < w; c++ {
			p := row[(x0+c)*pb : (x0+c+1)*pb]
			for ch, m := range outs {
				off := 0
				if s.Channels == 3 {
					off = ch * n
				}
				m.Set(r, c, float64(sample(p[off:off+n], s.Depth))*scale)
			}
		}
	}
	return nil
}

// region resolves WholeExtent and validates the rectangle against s.
func region(s Shape, x0, y0, w, h int) (int, int, error) {
	if w == WholeExtent {
		w = s.Width - x0
	}
	if h == WholeExtent {
		h = s.Height - y0
	}
	if x0 < 0 || y0 < 0 || w <= 0 || h <= 0 || x0+w > s.Width || y0+h > s.Height {
		return 0, 0, fmt.Errorf("%w: region (%d,%d) %dx%d outside %dx%d image",
			ErrOutOfRange, x0, y0, w, h, s.Width, s.Height)
	}
	return w, h, nil
}
