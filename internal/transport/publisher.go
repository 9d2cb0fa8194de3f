// SPDX-License-Identifier: MIT
package transport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/cmplx"
	"sync"
	"time"

	"github.com/C0D3-M4513R/visualizer2/internal/analysis"
	applog "github.com/C0D3-M4513R/visualizer2/internal/log"
	"github.com/C0D3-M4513R/visualizer2/internal/transport/udp"
)

// SpectrumFrame is the JSON payload broadcast to renderer clients. The
// magnitude slices cover bins 0 through length/2 (DC through the effective
// Nyquist frequency).
type SpectrumFrame struct {
	Type     string             `json:"type"`
	Seq      uint32             `json:"seq"`
	BinWidth float64            `json:"bin_width"`
	Left     []float64          `json:"left"`
	Right    []float64          `json:"right"`
	Bands    map[string]float64 `json:"bands,omitempty"`
}

// SpectrumPublisher drives one analyzer at a fixed cadence and fans the
// resulting magnitudes out to the enabled transports. It owns the analyzer:
// running every Analyze call on the publisher goroutine provides the
// serialization one analyzer requires, while additional publishers with
// their own analyzers may read the same buffer concurrently.
type SpectrumPublisher struct {
	analyzer *analysis.FourierAnalyzer
	buffer   *analysis.SampleBuffer
	interval time.Duration
	out      Transport   // JSON fan-out, may be nil
	sender   *udp.Sender // binary packet feed, may be nil
	bands    *analysis.BandSet

	// Pre-allocated per-tick scratch.
	magL, magR []float64
	f32        []float32
	packet     *bytes.Buffer

	seq uint32

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan across Start/Stop
}

// NewSpectrumPublisher wires an analyzer and a buffer handle to the given
// transports. An interval <= 0 defaults to 33ms (~30Hz).
func NewSpectrumPublisher(interval time.Duration, analyzer *analysis.FourierAnalyzer, buffer *analysis.SampleBuffer, out Transport, sender *udp.Sender) (*SpectrumPublisher, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("%w: publisher needs an analyzer", analysis.ErrConfig)
	}
	if buffer == nil {
		return nil, fmt.Errorf("%w: publisher needs a sample buffer", analysis.ErrConfig)
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("transport: invalid publish interval, defaulting to %s", interval)
	}

	bins := analyzer.Length()/2 + 1
	nyquist := buffer.SampleRate() / float64(analyzer.Downsample()) / 2
	applog.Infof("transport: publishing %d bins every %s (nyquist %.0f Hz)", bins, interval, nyquist)

	return &SpectrumPublisher{
		analyzer: analyzer,
		buffer:   buffer,
		interval: interval,
		out:      out,
		sender:   sender,
		bands:    analysis.NewBandSet(nyquist),
		magL:     make([]float64, bins),
		magR:     make([]float64, bins),
		f32:      make([]float32, bins),
		packet:   new(bytes.Buffer),
	}, nil
}

// Start launches the publisher goroutine. Safe to call repeatedly; extra
// calls are no-ops while running.
func (p *SpectrumPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("transport: publisher already running")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine and waits for it to exit. Idempotent.
func (p *SpectrumPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Close implements io.Closer.
func (p *SpectrumPublisher) Close() error { return p.Stop() }

// publish runs one analysis pass and fans the magnitudes out.
func (p *SpectrumPublisher) publish() {
	left, right := p.analyzer.Analyze(p.buffer)
	for i := range p.magL {
		p.magL[i] = cmplx.Abs(left[i])
		p.magR[i] = cmplx.Abs(right[i])
	}

	binWidth := p.analyzer.BinWidth(p.buffer.SampleRate())
	bands := p.bands.Update(p.magL, binWidth)
	p.seq++

	if p.out != nil {
		frame := SpectrumFrame{
			Type:     "spectrum",
			Seq:      p.seq,
			BinWidth: binWidth,
			Left:     p.magL,
			Right:    p.magR,
			Bands:    make(map[string]float64, len(bands)),
		}
		for _, b := range bands {
			frame.Bands[b.Name] = b.Energy
		}
		if err := p.out.Send(frame); err != nil {
			applog.Errorf("transport: error broadcasting spectrum: %v", err)
		}
	}

	if p.sender != nil {
		packet, err := p.buildPacket()
		if err != nil {
			applog.Errorf("transport: error packing spectrum packet: %v", err)
			return
		}
		if err := p.sender.Send(packet); err == nil {
			applog.Debugf("transport: sent packet %d (%d bytes)", p.seq, len(packet))
		}
	}
}

/*
UDP packet layout (BigEndian):

	| Field           | Type      | Size    |
	|-----------------|-----------|---------|
	| Sequence number | uint32    | 4       |
	| Timestamp       | int64     | 8       |
	| Bin count       | uint16    | 2       |
	| Left magnitudes | []float32 | count*4 |
	| Right magnitudes| []float32 | count*4 |
*/

// buildPacket packs the current magnitudes into the reusable packet buffer
// and returns its bytes, valid until the next call.
func (p *SpectrumPublisher) buildPacket() ([]byte, error) {
	p.packet.Reset()

	err := binary.Write(p.packet, binary.BigEndian, p.seq)
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, uint16(len(p.f32)))
	}

	for i, v := range p.magL {
		p.f32[i] = float32(v)
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, p.f32)
	}
	for i, v := range p.magR {
		p.f32[i] = float32(v)
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, p.f32)
	}

	if err != nil {
		return nil, err
	}
	return p.packet.Bytes(), nil
}
