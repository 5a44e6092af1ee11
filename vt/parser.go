// Copyright © 2026 Termweave contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: vt/parser.go
// Summary: Table-driven VT/ANSI escape sequence parser.
//
// The parser consumes raw bytes and invokes an ActionSink synchronously
// for every completed action. It never fails, never panics, and holds
// only bounded state: malformed or adversarial input is absorbed into
// the ignore states and discarded without dispatch.

package vt

import "unicode/utf8"

const (
	// MaxParams bounds the CSI/DCS parameter list.
	MaxParams = 16

	// MaxIntermediates bounds collected intermediate bytes.
	MaxIntermediates = 4

	// MaxOscData bounds collected OSC payload bytes (64 KiB).
	MaxOscData = 64 * 1024

	// MaxOscParams bounds the number of ';'-separated OSC segments.
	MaxOscParams = 8
)

// Parser is the VT escape-sequence state machine. One parser is created
// per terminal and mutated on every byte. The zero value is not usable;
// call NewParser.
type Parser struct {
	state         State
	params        []uint16
	intermediates []byte
	oscData       []byte

	// currentParam accumulates digits with saturating arithmetic and is
	// clamped to 65535 when the parameter is finalized.
	currentParam uint32
	paramStarted bool

	// dcsActive pairs DcsHook with exactly one DcsUnhook.
	dcsActive bool
	// apcActive distinguishes APC from SOS/PM in the shared string state.
	apcActive bool

	// UTF-8 accumulation for printable text in ground state.
	utf8Buf      [4]byte
	utf8Len      int
	utf8Expected int

	// oscParams is reused across dispatches to avoid per-OSC allocation.
	oscParams [][]byte
}

// NewParser returns a parser in the ground state.
func NewParser() *Parser {
	return &Parser{
		state:         StateGround,
		params:        make([]uint16, 0, MaxParams),
		intermediates: make([]byte, 0, MaxIntermediates),
		oscData:       make([]byte, 0, 128),
		oscParams:     make([][]byte, 0, MaxOscParams),
	}
}

// State returns the current parser state.
func (p *Parser) State() State { return p.state }

// Reset forces the parser back to ground with empty buffers. This is the
// only externally triggered reset; the terminal uses it on RIS.
func (p *Parser) Reset() {
	p.state = StateGround
	p.params = p.params[:0]
	p.intermediates = p.intermediates[:0]
	p.oscData = p.oscData[:0]
	p.currentParam = 0
	p.paramStarted = false
	p.dcsActive = false
	p.apcActive = false
	p.utf8Len = 0
	p.utf8Expected = 0
}

// Advance feeds input through the state machine, invoking sink for every
// completed action. Dispatch is always synchronous; when Advance returns,
// every action for the consumed bytes has been delivered.
func (p *Parser) Advance(input []byte, sink ActionSink) {
	for _, b := range input {
		if p.state == StateGround {
			if p.utf8Len > 0 {
				p.advanceUTF8(b, sink)
				continue
			}
			if b >= 0x80 {
				switch {
				case b >= 0xC0 && b <= 0xF7:
					p.startUTF8(b)
				case b <= 0x9F:
					// 8-bit C1 control, goes through the table.
					p.processByte(b, sink)
				default:
					// Orphan continuation byte or invalid lead.
					sink.Print(utf8.RuneError)
				}
				continue
			}
		}
		p.processByte(b, sink)
	}
}

func (p *Parser) startUTF8(b byte) {
	p.utf8Buf[0] = b
	p.utf8Len = 1
	switch {
	case b >= 0xF0:
		p.utf8Expected = 4
	case b >= 0xE0:
		p.utf8Expected = 3
	default:
		p.utf8Expected = 2
	}
}

func (p *Parser) advanceUTF8(b byte, sink ActionSink) {
	if b >= 0x80 && b <= 0xBF {
		p.utf8Buf[p.utf8Len] = b
		p.utf8Len++
		if p.utf8Len == p.utf8Expected {
			r, _ := utf8.DecodeRune(p.utf8Buf[:p.utf8Len])
			sink.Print(r)
			p.utf8Len = 0
			p.utf8Expected = 0
		}
		return
	}

	// Broken sequence: emit a replacement for the partial rune, then
	// reprocess the interrupting byte from scratch.
	sink.Print(utf8.RuneError)
	p.utf8Len = 0
	p.utf8Expected = 0
	switch {
	case b >= 0xC0 && b <= 0xF7:
		p.startUTF8(b)
	case b >= 0x80:
		sink.Print(utf8.RuneError)
	default:
		p.processByte(b, sink)
	}
}

func (p *Parser) processByte(b byte, sink ActionSink) {
	t := transitions[p.state][b]
	prev := p.state

	// Exit actions fire before the transition's own action so that a
	// sequence interrupted by ESC, CAN or SUB still closes cleanly.
	if prev == StateDcsPassthrough && t.next != StateDcsPassthrough && p.dcsActive {
		sink.DcsUnhook()
		p.dcsActive = false
	}
	if prev == StateOscString && t.next != StateOscString && t.action != actOscEnd {
		p.dispatchOsc(sink)
	}
	if prev == StateSosPmApcString && t.next != StateSosPmApcString && t.action != actApcEnd && p.apcActive {
		sink.ApcEnd()
		p.apcActive = false
	}

	switch t.action {
	case actNone, actIgnore:
	case actPrint:
		sink.Print(rune(b))
	case actExecute:
		sink.Execute(b)
	case actClear:
		p.clear()
		p.oscData = p.oscData[:0]
	case actCollect:
		if len(p.intermediates) < MaxIntermediates {
			p.intermediates = append(p.intermediates, b)
		}
	case actParam:
		p.addParamByte(b)
	case actEscDispatch:
		sink.EscDispatch(p.intermediates, b)
	case actCsiDispatch:
		if p.paramStarted {
			p.finalizeParam()
		}
		sink.CsiDispatch(p.params, p.intermediates, b)
	case actDcsHook:
		if p.paramStarted {
			p.finalizeParam()
		}
		sink.DcsHook(p.params, p.intermediates, b)
		p.dcsActive = true
	case actDcsPut:
		sink.DcsPut(b)
	case actOscStart:
		p.oscData = p.oscData[:0]
	case actOscPut:
		if len(p.oscData) < MaxOscData {
			p.oscData = append(p.oscData, b)
		}
	case actOscEnd:
		p.dispatchOsc(sink)
	case actApcStart:
		sink.ApcStart()
		p.apcActive = true
	case actApcPut:
		if p.apcActive {
			sink.ApcPut(b)
		}
	case actApcEnd:
		if p.apcActive {
			sink.ApcEnd()
			p.apcActive = false
		}
	}

	p.state = t.next
}

func (p *Parser) clear() {
	p.params = p.params[:0]
	p.intermediates = p.intermediates[:0]
	p.currentParam = 0
	p.paramStarted = false
}

// addParamByte accumulates a digit or finalizes on a separator. Both ';'
// and ':' finalize; subparameters are not distinguished at this layer.
func (p *Parser) addParamByte(b byte) {
	switch {
	case b >= '0' && b <= '9':
		// Saturating accumulation: once past the finalization clamp the
		// value stops growing, so arbitrarily long digit runs are safe.
		if p.currentParam <= 0xFFFF {
			p.currentParam = p.currentParam*10 + uint32(b-'0')
		}
		p.paramStarted = true
	case b == ';' || b == ':':
		p.finalizeParam()
	}
}

func (p *Parser) finalizeParam() {
	if len(p.params) < MaxParams {
		v := p.currentParam
		if v > 0xFFFF {
			v = 0xFFFF
		}
		p.params = append(p.params, uint16(v))
	}
	p.currentParam = 0
	p.paramStarted = false
}

// dispatchOsc splits the collected OSC payload on ';' and delivers up to
// MaxOscParams segments. Segments beyond the cap are dropped silently.
func (p *Parser) dispatchOsc(sink ActionSink) {
	p.oscParams = p.oscParams[:0]
	start := 0
	for i, b := range p.oscData {
		if b == ';' && len(p.oscParams) < MaxOscParams {
			p.oscParams = append(p.oscParams, p.oscData[start:i])
			start = i + 1
		}
	}
	if len(p.oscParams) < MaxOscParams {
		p.oscParams = append(p.oscParams, p.oscData[start:])
	}
	sink.OscDispatch(p.oscParams)
	p.oscData = p.oscData[:0]
}
