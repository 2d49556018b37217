package querytype

import "testing"

func TestFromNumToNumRoundTrip(t *testing.T) {
	cases := []Type{A, NS, CNAME, MX, AAAA, Type(999)}
	for _, want := range cases {
		got := FromNum(want.ToNum())
		if got != want {
			t.Errorf("FromNum(ToNum(%v)) = %v, want %v", want, got, want)
		}
	}
}

func TestStringNamesKnownTypes(t *testing.T) {
	if A.String() != "A" {
		t.Errorf("A.String() = %q, want A", A.String())
	}
	if Type(999).String() != "UNKNOWN" {
		t.Errorf("Type(999).String() = %q, want UNKNOWN", Type(999).String())
	}
}
