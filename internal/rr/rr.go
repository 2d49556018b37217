// Package rr implements the DNS resource record codec: the union of record
// shapes (UNKNOWN/A/NS/CNAME/MX/AAAA) that appear in a message's answer,
// authority, and additional sections.
package rr

import (
	"fmt"
	"net"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/querytype"
)

const classIN uint16 = 1

// ResourceRecord is a closed sum type over the record shapes this resolver
// understands. Go has no tagged unions, so Type discriminates which of the
// variant fields below are meaningful; Encode/Decode switch exhaustively
// over it rather than using interface dispatch.
type ResourceRecord struct {
	Domain string
	Type   querytype.Type
	TTL    uint32

	// A / AAAA
	IPAddr net.IP

	// NS / CNAME
	Host string

	// MX
	Priority uint16
	Exchange string

	// UNKNOWN
	UnknownDataLen uint16
}

// NewA builds an A record.
func NewA(domain string, ip net.IP, ttl uint32) ResourceRecord {
	return ResourceRecord{Domain: domain, Type: querytype.A, IPAddr: ip.To4(), TTL: ttl}
}

// NewAAAA builds an AAAA record.
func NewAAAA(domain string, ip net.IP, ttl uint32) ResourceRecord {
	return ResourceRecord{Domain: domain, Type: querytype.AAAA, IPAddr: ip.To16(), TTL: ttl}
}

// NewNS builds an NS record.
func NewNS(domain, host string, ttl uint32) ResourceRecord {
	return ResourceRecord{Domain: domain, Type: querytype.NS, Host: host, TTL: ttl}
}

// NewCNAME builds a CNAME record.
func NewCNAME(domain, host string, ttl uint32) ResourceRecord {
	return ResourceRecord{Domain: domain, Type: querytype.CNAME, Host: host, TTL: ttl}
}

// NewMX builds an MX record.
func NewMX(domain string, priority uint16, exchange string, ttl uint32) ResourceRecord {
	return ResourceRecord{Domain: domain, Type: querytype.MX, Priority: priority, Exchange: exchange, TTL: ttl}
}

func writeCommonFields(buf *buffer.Buffer, domain string, qtype querytype.Type, ttl uint32) error {
	if err := buf.WriteName(domain); err != nil {
		return fmt.Errorf("rr: write domain: %w", err)
	}
	if err := buf.WriteU16(qtype.ToNum()); err != nil {
		return fmt.Errorf("rr: write type: %w", err)
	}
	if err := buf.WriteU16(classIN); err != nil {
		return fmt.Errorf("rr: write class: %w", err)
	}
	if err := buf.WriteU32(ttl); err != nil {
		return fmt.Errorf("rr: write ttl: %w", err)
	}
	return nil
}

// writeNameWithSize reserves a 2-byte RDLENGTH slot, writes name, then
// back-patches the reserved slot with the number of bytes actually written.
func writeNameWithSize(buf *buffer.Buffer, name string) error {
	const sizeFieldLen = 2
	buf.Step(sizeFieldLen)

	start := buf.Pos()
	if err := buf.WriteName(name); err != nil {
		return fmt.Errorf("rr: write name: %w", err)
	}
	size := buf.Pos() - start

	return buf.SetU16(start-sizeFieldLen, uint16(size))
}

// Encode writes the record to buf at the current cursor.
func (r ResourceRecord) Encode(buf *buffer.Buffer) error {
	switch r.Type {
	case querytype.A:
		if err := writeCommonFields(buf, r.Domain, querytype.A, r.TTL); err != nil {
			return err
		}
		ip := r.IPAddr.To4()
		if ip == nil {
			return fmt.Errorf("rr: A record %q has no IPv4 address", r.Domain)
		}
		if err := buf.WriteU16(4); err != nil {
			return fmt.Errorf("rr: write rdlength: %w", err)
		}
		for _, octet := range ip {
			if err := buf.WriteU8(octet); err != nil {
				return fmt.Errorf("rr: write a octet: %w", err)
			}
		}
		return nil

	case querytype.AAAA:
		if err := writeCommonFields(buf, r.Domain, querytype.AAAA, r.TTL); err != nil {
			return err
		}
		ip := r.IPAddr.To16()
		if ip == nil {
			return fmt.Errorf("rr: AAAA record %q has no IPv6 address", r.Domain)
		}
		if err := buf.WriteU16(16); err != nil {
			return fmt.Errorf("rr: write rdlength: %w", err)
		}
		for i := 0; i < 16; i += 2 {
			if err := buf.WriteU16(uint16(ip[i])<<8 | uint16(ip[i+1])); err != nil {
				return fmt.Errorf("rr: write aaaa segment: %w", err)
			}
		}
		return nil

	case querytype.NS:
		if err := writeCommonFields(buf, r.Domain, querytype.NS, r.TTL); err != nil {
			return err
		}
		return writeNameWithSize(buf, r.Host)

	case querytype.CNAME:
		if err := writeCommonFields(buf, r.Domain, querytype.CNAME, r.TTL); err != nil {
			return err
		}
		return writeNameWithSize(buf, r.Host)

	case querytype.MX:
		if err := writeCommonFields(buf, r.Domain, querytype.MX, r.TTL); err != nil {
			return err
		}
		const sizeFieldLen = 2
		buf.Step(sizeFieldLen)
		start := buf.Pos()
		if err := buf.WriteU16(r.Priority); err != nil {
			return fmt.Errorf("rr: write mx priority: %w", err)
		}
		if err := buf.WriteName(r.Exchange); err != nil {
			return fmt.Errorf("rr: write mx exchange: %w", err)
		}
		size := buf.Pos() - start
		return buf.SetU16(start-sizeFieldLen, uint16(size))

	default:
		// UNKNOWN records are never re-encoded: they carry no meaningful
		// RDATA to replay, only a length the decoder used to skip past them.
		return nil
	}
}

// Decode reads one resource record from buf at the current cursor.
func Decode(buf *buffer.Buffer) (ResourceRecord, error) {
	domain, err := buf.ReadName()
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("rr: read domain: %w", err)
	}

	typeNum, err := buf.ReadU16()
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("rr: read type: %w", err)
	}
	qtype := querytype.FromNum(typeNum)

	if _, err := buf.ReadU16(); err != nil { // class, ignored
		return ResourceRecord{}, fmt.Errorf("rr: read class: %w", err)
	}

	ttl, err := buf.ReadU32()
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("rr: read ttl: %w", err)
	}

	dataLen, err := buf.ReadU16()
	if err != nil {
		return ResourceRecord{}, fmt.Errorf("rr: read rdlength: %w", err)
	}

	switch qtype {
	case querytype.A:
		raw, err := buf.ReadU32()
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("rr: read a address: %w", err)
		}
		ip := net.IPv4(byte(raw>>24), byte(raw>>16), byte(raw>>8), byte(raw))
		return NewA(domain, ip, ttl), nil

	case querytype.AAAA:
		ip := make(net.IP, 16)
		for i := 0; i < 16; i += 2 {
			seg, err := buf.ReadU16()
			if err != nil {
				return ResourceRecord{}, fmt.Errorf("rr: read aaaa segment: %w", err)
			}
			ip[i] = byte(seg >> 8)
			ip[i+1] = byte(seg)
		}
		return NewAAAA(domain, ip, ttl), nil

	case querytype.NS:
		host, err := buf.ReadName()
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("rr: read ns host: %w", err)
		}
		return NewNS(domain, host, ttl), nil

	case querytype.CNAME:
		host, err := buf.ReadName()
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("rr: read cname host: %w", err)
		}
		return NewCNAME(domain, host, ttl), nil

	case querytype.MX:
		priority, err := buf.ReadU16()
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("rr: read mx priority: %w", err)
		}
		exchange, err := buf.ReadName()
		if err != nil {
			return ResourceRecord{}, fmt.Errorf("rr: read mx exchange: %w", err)
		}
		return NewMX(domain, priority, exchange, ttl), nil

	default:
		buf.Step(int(dataLen))
		return ResourceRecord{
			Domain:         domain,
			Type:           qtype,
			TTL:            ttl,
			UnknownDataLen: dataLen,
		}, nil
	}
}
