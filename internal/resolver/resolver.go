// Package resolver implements the iterative resolution state machine: it
// walks delegations from a root name server down to an authoritative
// answer, one query at a time, with no caching and no concurrency.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/tkowalski/recdns/internal/buffer"
	"github.com/tkowalski/recdns/internal/header"
	"github.com/tkowalski/recdns/internal/metrics"
	"github.com/tkowalski/recdns/internal/packet"
	"github.com/tkowalski/recdns/internal/query"
	"github.com/tkowalski/recdns/internal/querytype"
	"github.com/tkowalski/recdns/internal/returncode"
)

// DefaultRootHint is a.root-servers.net, the well-known IANA root server
// used to seed every iterative lookup.
var DefaultRootHint = net.ParseIP("198.41.0.4")

const (
	// maxReferralDepth bounds recursiveLookup's recursion into
	// out-of-bailiwick NS hostname resolution. Unlike a TTL-bearing cache,
	// this resolver has no other defense against a maliciously or
	// accidentally looping delegation chain.
	maxReferralDepth = 16

	// lookupTimeout bounds how long a single upstream round trip may take
	// before it is treated as a failed lookup.
	lookupTimeout = 3 * time.Second

	dnsPort = 53
)

var errMaxReferralDepth = errors.New("resolver: maximum referral depth exceeded")

// Resolver performs iterative DNS resolution. It holds no mutable
// resolution state between calls: every HandleQuery/lookup walks the
// hierarchy from scratch, by design (see package doc).
type Resolver struct {
	logger     *slog.Logger
	rootHint   net.IP
	serverPort int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger overrides the default stdout text logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithRootHint overrides DefaultRootHint, e.g. for tests that stand up a
// fake root server on localhost.
func WithRootHint(ip net.IP) Option {
	return func(r *Resolver) { r.rootHint = ip }
}

// WithServerPort overrides the port dialed for every upstream lookup
// (default 53). Tests use this to point the resolver at fake servers bound
// to ephemeral ports.
func WithServerPort(port int) Option {
	return func(r *Resolver) { r.serverPort = port }
}

// New builds a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{rootHint: DefaultRootHint, serverPort: dnsPort}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return r
}

// HandleQuery builds a response packet for req by resolving each of its
// queries. It never mutates req.
func (r *Resolver) HandleQuery(req *packet.Packet) *packet.Packet {
	res := packet.New()
	res.Header.ID = req.Header.ID
	res.Header.Response = true
	res.Header.RecursionDesired = req.Header.RecursionDesired
	res.Header.RecursionAvailable = true

	if len(req.Queries) == 0 {
		res.Header.ReturnCode = returncode.FormatError
		return res
	}

	for _, q := range req.Queries {
		start := time.Now()
		result, err := r.recursiveLookup(q.Name, q.Type, r.rootHint, 0)
		metrics.LookupDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			r.logger.Warn("recursive lookup failed",
				slog.String("qname", q.Name), slog.Any("qtype", q.Type), slog.Any("error", err))
			res.Answers = nil
			res.Authority = nil
			res.Additional = nil
			res.Header.ReturnCode = returncode.ServerFailure
			metrics.QueriesTotal.WithLabelValues(q.Type.String(), res.Header.ReturnCode.String()).Inc()
			break
		}

		res.Queries = append(res.Queries, q)
		res.Header.ReturnCode = result.Header.ReturnCode
		res.Answers = append(res.Answers, result.Answers...)
		res.Authority = append(res.Authority, result.Authority...)
		res.Additional = append(res.Additional, result.Additional...)

		metrics.QueriesTotal.WithLabelValues(q.Type.String(), result.Header.ReturnCode.String()).Inc()
	}

	return res
}

// lookup performs a single question/server round trip over a fresh,
// ephemeral UDP socket: a new socket and a random transaction ID per call,
// so a stale or spoofed response from an earlier lookup can't be matched
// against this one.
func (r *Resolver) lookup(qname string, qtype querytype.Type, server net.IP) (*packet.Packet, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("resolver: open lookup socket: %w", err)
	}
	defer conn.Close()

	id, err := header.RandomID()
	if err != nil {
		return nil, fmt.Errorf("resolver: generate query id: %w", err)
	}

	req := packet.New()
	req.Header.ID = id
	req.Header.RecursionDesired = true
	req.Queries = []query.Query{query.New(qname, qtype)}

	outBuf := buffer.New()
	if err := req.Encode(outBuf); err != nil {
		return nil, fmt.Errorf("resolver: encode query: %w", err)
	}

	dst := &net.UDPAddr{IP: server, Port: r.serverPort}
	payload, err := outBuf.GetRange(0, outBuf.Pos())
	if err != nil {
		return nil, fmt.Errorf("resolver: read encoded query: %w", err)
	}
	if _, err := conn.WriteToUDP(payload, dst); err != nil {
		return nil, fmt.Errorf("resolver: send query to %s: %w", dst, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(lookupTimeout)); err != nil {
		return nil, fmt.Errorf("resolver: set read deadline: %w", err)
	}

	raw := make([]byte, buffer.Size)
	if _, _, err := conn.ReadFromUDP(raw); err != nil {
		return nil, fmt.Errorf("resolver: read response from %s: %w", dst, err)
	}

	var respArr [buffer.Size]byte
	copy(respArr[:], raw)
	inBuf := buffer.FromBytes(respArr)

	resp, err := packet.Decode(inBuf)
	if err != nil {
		return nil, fmt.Errorf("resolver: decode response from %s: %w", dst, err)
	}
	if resp.Header.ID != id {
		return nil, fmt.Errorf("resolver: response from %s has id %d, want %d", dst, resp.Header.ID, id)
	}

	return resp, nil
}

// recursiveLookup walks the delegation chain for qname/qtype starting at
// ns, following referrals until a terminal answer (NOERROR with answers, or
// NXDOMAIN) is reached.
func (r *Resolver) recursiveLookup(qname string, qtype querytype.Type, ns net.IP, depth int) (*packet.Packet, error) {
	if depth > maxReferralDepth {
		return nil, errMaxReferralDepth
	}

	for {
		r.logger.Debug("performing lookup",
			slog.String("qname", qname), slog.Any("qtype", qtype), slog.String("ns", ns.String()))

		response, err := r.lookup(qname, qtype, ns)
		if err != nil {
			return nil, fmt.Errorf("resolver: lookup %s against %s: %w", qname, ns, err)
		}

		terminal := (len(response.Answers) > 0 && response.Header.ReturnCode == returncode.NoError) ||
			response.Header.ReturnCode == returncode.NameError
		if terminal {
			return response, nil
		}

		if glue := response.GlueA(qname); len(glue) > 0 {
			ns = glue[len(glue)-1]
			continue
		}

		hosts := response.NSHosts(qname)
		if len(hosts) == 0 {
			return response, nil
		}
		newNSHost := hosts[len(hosts)-1]

		recursiveResponse, err := r.recursiveLookup(newNSHost, qtype, r.rootHint, depth+1)
		if err != nil {
			return nil, fmt.Errorf("resolver: resolve nameserver %s: %w", newNSHost, err)
		}

		addrs := recursiveResponse.AnswersA()
		if len(addrs) == 0 {
			return response, nil
		}
		ns = addrs[len(addrs)-1]
	}
}
