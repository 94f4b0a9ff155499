package guest

import "io"

// ProgressFunc receives the percentage of bytes transferred so far.
// Callbacks are monotonically non-decreasing and reach 100 only when the
// full payload has been read.
type ProgressFunc func(percent int)

// progressReader counts bytes as the HTTP client drains the request body
// and reports whole-percent increments to the callback.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	lastPct    int
	onProgress ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, lastPct: -1, onProgress: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if p.onProgress != nil && pct > p.lastPct {
			p.lastPct = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
