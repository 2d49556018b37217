// Package returncode defines the 4-bit DNS response code (RCODE) carried
// in the header's flags field.
package returncode

// Code is a DNS RCODE value (RFC 1035 §4.1.1).
type Code uint8

const (
	NoError        Code = iota // No error condition.
	FormatError                // The name server was unable to interpret the query.
	ServerFailure              // The name server encountered an internal problem.
	NameError                  // The domain name referenced does not exist.
	NotImplemented             // The requested kind of query is not supported.
	Refused                    // The name server refuses to perform the requested operation.
)

// FromNum maps a raw 4-bit wire value to a Code. Values outside the six
// codes this resolver produces fall back to NoError, matching the
// historical behavior of the system this was ported from.
func FromNum(n uint8) Code {
	if n > uint8(Refused) {
		return NoError
	}
	return Code(n)
}

func (c Code) String() string {
	switch c {
	case NoError:
		return "NOERROR"
	case FormatError:
		return "FORMERR"
	case ServerFailure:
		return "SERVFAIL"
	case NameError:
		return "NXDOMAIN"
	case NotImplemented:
		return "NOTIMP"
	case Refused:
		return "REFUSED"
	default:
		return "NOERROR"
	}
}
