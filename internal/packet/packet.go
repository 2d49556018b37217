// Package packet assembles a full DNS message: the header plus its four
// record sections, in wire order.
package packet

import (
	"fmt"
	"net"
	"strings"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/header"
	"github.com/tkowalski/recdns/internal/query"
	"github.com/tkowalski/recdns/internal/querytype"
	"github.com/tkowalski/recdns/internal/rr"
)

// Packet is a complete DNS message.
type Packet struct {
	Header     header.Header
	Queries    []query.Query
	Answers    []rr.ResourceRecord
	Authority  []rr.ResourceRecord
	Additional []rr.ResourceRecord
}

// New returns an empty packet.
func New() *Packet {
	return &Packet{}
}

// Decode reads a whole packet from buf, starting at the current cursor.
func Decode(buf *buffer.Buffer) (*Packet, error) {
	h, err := header.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("packet: decode header: %w", err)
	}

	p := &Packet{Header: *h}

	for i := uint16(0); i < h.Questions; i++ {
		q, err := query.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("packet: decode query %d: %w", i, err)
		}
		p.Queries = append(p.Queries, q)
	}

	p.Answers, err = decodeRecords(buf, h.Answers)
	if err != nil {
		return nil, fmt.Errorf("packet: decode answers: %w", err)
	}
	p.Authority, err = decodeRecords(buf, h.AuthoritativeCount)
	if err != nil {
		return nil, fmt.Errorf("packet: decode authority: %w", err)
	}
	p.Additional, err = decodeRecords(buf, h.Additional)
	if err != nil {
		return nil, fmt.Errorf("packet: decode additional: %w", err)
	}

	return p, nil
}

func decodeRecords(buf *buffer.Buffer, count uint16) ([]rr.ResourceRecord, error) {
	records := make([]rr.ResourceRecord, 0, count)
	for i := uint16(0); i < count; i++ {
		rec, err := rr.Decode(buf)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Encode writes the packet to buf, refreshing the header's section counts
// from the slices' lengths first.
func (p *Packet) Encode(buf *buffer.Buffer) error {
	p.Header.Questions = uint16(len(p.Queries))
	p.Header.Answers = uint16(len(p.Answers))
	p.Header.AuthoritativeCount = uint16(len(p.Authority))
	p.Header.Additional = uint16(len(p.Additional))

	if err := p.Header.Encode(buf); err != nil {
		return fmt.Errorf("packet: encode header: %w", err)
	}

	for i, q := range p.Queries {
		if err := q.Encode(buf); err != nil {
			return fmt.Errorf("packet: encode query %d: %w", i, err)
		}
	}
	if err := encodeRecords(buf, p.Answers); err != nil {
		return fmt.Errorf("packet: encode answers: %w", err)
	}
	if err := encodeRecords(buf, p.Authority); err != nil {
		return fmt.Errorf("packet: encode authority: %w", err)
	}
	if err := encodeRecords(buf, p.Additional); err != nil {
		return fmt.Errorf("packet: encode additional: %w", err)
	}

	return nil
}

func encodeRecords(buf *buffer.Buffer, records []rr.ResourceRecord) error {
	for i, rec := range records {
		if err := rec.Encode(buf); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// AnswersA returns the IPv4 addresses of every A record in the answer
// section, in order.
func (p *Packet) AnswersA() []net.IP {
	var out []net.IP
	for _, rec := range p.Answers {
		if rec.Type == querytype.A {
			out = append(out, rec.IPAddr)
		}
	}
	return out
}

// inBailiwick reports whether qname falls under zone: either qname equals
// zone, or qname is a strict subdomain of it (ends with "."+zone). A plain
// suffix match ("evilgoogle.com" "ends with" "google.com") would wrongly
// treat an unrelated domain as delegated by this zone's nameservers; this
// requires the match to land on a label boundary.
func inBailiwick(qname, zone string) bool {
	qname = strings.TrimSuffix(qname, ".")
	zone = strings.TrimSuffix(zone, ".")
	if zone == "" {
		return true
	}
	if qname == zone {
		return true
	}
	return strings.HasSuffix(qname, "."+zone)
}

// nsDomainHosts returns the (domain, host) pairs of every NS record in the
// authority section whose domain qname is in-bailiwick of.
func (p *Packet) nsDomainHosts(qname string) [][2]string {
	var out [][2]string
	for _, rec := range p.Authority {
		if rec.Type != querytype.NS {
			continue
		}
		if inBailiwick(qname, rec.Domain) {
			out = append(out, [2]string{rec.Domain, rec.Host})
		}
	}
	return out
}

// NSHosts returns the hostnames of every in-bailiwick NS record in the
// authority section.
func (p *Packet) NSHosts(qname string) []string {
	pairs := p.nsDomainHosts(qname)
	hosts := make([]string, len(pairs))
	for i, pair := range pairs {
		hosts[i] = pair[1]
	}
	return hosts
}

// GlueA returns the IPv4 glue addresses in the additional section for every
// in-bailiwick NS hostname, in authority-section order.
func (p *Packet) GlueA(qname string) []net.IP {
	var out []net.IP
	for _, pair := range p.nsDomainHosts(qname) {
		host := pair[1]
		for _, rec := range p.Additional {
			if rec.Type == querytype.A && rec.Domain == host {
				out = append(out, rec.IPAddr)
			}
		}
	}
	return out
}
