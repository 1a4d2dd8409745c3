package storage

import "io"

// progressReader wraps the request body and reports integer percentages as
// bytes are consumed by the transport. Percent values never go backwards.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	callback func(int)
}

func newProgressReader(r io.Reader, total int64, callback func(int)) *progressReader {
	return &progressReader{r: r, total: total, lastPct: -1, callback: callback}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.callback == nil || p.total <= 0 {
		return
	}
	pct := int(p.read * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if pct > p.lastPct {
		p.lastPct = pct
		p.callback(pct)
	}
}
