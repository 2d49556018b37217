package rr

import (
	"net"
	"testing"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/querytype"
)

func TestARecordRoundTrip(t *testing.T) {
	rec := NewA("google.com", net.ParseIP("8.8.8.8"), 300)

	buf := buffer.New()
	if err := rec.Encode(buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	buf.Seek(0)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.Domain != rec.Domain || got.Type != querytype.A || got.TTL != rec.TTL || !got.IPAddr.Equal(rec.IPAddr) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
	}
}

func TestAAAARecordRoundTrip(t *testing.T) {
	ip := net.ParseIP("2001:4860:4860::8888")
	rec := NewAAAA("google.com", ip, 300)

	buf := buffer.New()
	if err := rec.Encode(buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	buf.Seek(0)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if !got.IPAddr.Equal(ip) {
		t.Errorf("got ip %v, want %v", got.IPAddr, ip)
	}
}

func TestNSRecordRoundTripWithBackpatchedRDLENGTH(t *testing.T) {
	buf := buffer.New()

	first := NewNS("google.com", "ns1.google.com", 64)
	second := NewNS("google.com", "ns2.google.com", 64)

	if err := first.Encode(buf); err != nil {
		t.Fatalf("Encode first failed: %v", err)
	}
	if err := second.Encode(buf); err != nil {
		t.Fatalf("Encode second failed: %v", err)
	}

	buf.Seek(0)
	gotFirst, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode first failed: %v", err)
	}
	gotSecond, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode second failed: %v", err)
	}

	if gotFirst.Host != "ns1.google.com" {
		t.Errorf("first host = %q, want ns1.google.com", gotFirst.Host)
	}
	if gotSecond.Host != "ns2.google.com" {
		t.Errorf("second host = %q, want ns2.google.com", gotSecond.Host)
	}
}

func TestMXRecordRoundTrip(t *testing.T) {
	rec := NewMX("google.com", 10, "mail.google.com", 3600)

	buf := buffer.New()
	if err := rec.Encode(buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	buf.Seek(0)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Priority != 10 || got.Exchange != "mail.google.com" {
		t.Errorf("got %+v, want priority=10 exchange=mail.google.com", got)
	}
}

func TestUnknownTypeSkipsRDATA(t *testing.T) {
	buf := buffer.New()

	if err := buf.WriteName("example.com"); err != nil {
		t.Fatalf("WriteName failed: %v", err)
	}
	if err := buf.WriteU16(999); err != nil { // unrecognized type
		t.Fatalf("WriteU16 type failed: %v", err)
	}
	if err := buf.WriteU16(1); err != nil { // class
		t.Fatalf("WriteU16 class failed: %v", err)
	}
	if err := buf.WriteU32(60); err != nil { // ttl
		t.Fatalf("WriteU32 ttl failed: %v", err)
	}
	if err := buf.WriteU16(4); err != nil { // rdlength
		t.Fatalf("WriteU16 rdlength failed: %v", err)
	}
	for _, b := range []byte{1, 2, 3, 4} {
		if err := buf.WriteU8(b); err != nil {
			t.Fatalf("WriteU8 rdata failed: %v", err)
		}
	}
	// A trailing marker to confirm the cursor landed after, not inside, RDATA.
	if err := buf.WriteU16(0xABCD); err != nil {
		t.Fatalf("WriteU16 marker failed: %v", err)
	}

	buf.Seek(0)
	got, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Type.ToNum() != 999 || got.UnknownDataLen != 4 {
		t.Errorf("got %+v, want type=999 datalen=4", got)
	}

	marker, err := buf.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16 marker failed: %v", err)
	}
	if marker != 0xABCD {
		t.Errorf("cursor landed at %#x after unknown RDATA, want 0xabcd marker", marker)
	}
}
