package smbclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strings"

	"github.com/absfs/smbclient/netbios"
)

// HostLookup is the DNS capability the resolver needs. *net.Resolver
// satisfies it.
type HostLookup interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// NameResolver is the NetBIOS capability the resolver needs.
// *netbios.Client satisfies it.
type NameResolver interface {
	Resolve(ctx context.Context, name string, t netbios.NameType) (netip.Addr, error)
}

// ResolveMethod records which step produced an address.
type ResolveMethod int

const (
	MethodLiteral ResolveMethod = iota
	MethodDNS
	MethodNetBIOS
)

func (m ResolveMethod) String() string {
	switch m {
	case MethodLiteral:
		return "literal"
	case MethodDNS:
		return "dns"
	case MethodNetBIOS:
		return "netbios"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving a server identifier. Host is the
// short server name (the first label) and Domain the domain used or
// inferred, if any.
type Resolution struct {
	Address netip.Addr
	Host    string
	Domain  string
	Method  ResolveMethod
}

// AddressResolver turns a server identifier into an IPv4 address. It
// never retries.
type AddressResolver struct {
	DNS       HostLookup
	NetBIOS   NameResolver
	NameTypes []netbios.NameType
	Logger    Logger

	cache *resolutionCache
}

// NewAddressResolver builds a resolver using the system DNS resolver and
// a NetBIOS client configured from config.
func NewAddressResolver(config *Config) *AddressResolver {
	types := config.NetBIOSNameTypes
	if len(types) == 0 {
		types = netbios.DefaultNameTypes
	}
	return &AddressResolver{
		DNS: net.DefaultResolver,
		NetBIOS: &netbios.Client{
			Server:    config.NetBIOSServer,
			Broadcast: config.NetBIOSBroadcast,
			Timeout:   config.NetBIOSTimeout,
		},
		NameTypes: types,
		Logger:    config.Logger,
		cache:     newResolutionCache(config.ResolveCacheTTL, 0),
	}
}

var dottedQuad = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

// Resolve applies, in order: literal dotted-quad parsing, DNS on
// host.domain when a domain is known, and NetBIOS on the short host name
// for each configured name type. domainHint takes precedence over the
// labels following the host name.
func (r *AddressResolver) Resolve(ctx context.Context, identifier, domainHint string) (Resolution, error) {
	id := strings.TrimSpace(identifier)
	if strings.EqualFold(id, "localhost") {
		id = "127.0.0.1"
	}

	if dottedQuad.MatchString(id) {
		addr, err := netip.ParseAddr(id)
		if err != nil {
			return Resolution{}, r.fail(identifier, err)
		}
		return Resolution{Address: addr, Host: id, Domain: domainHint, Method: MethodLiteral}, nil
	}

	host, rest, _ := strings.Cut(id, ".")
	if host == "" {
		return Resolution{}, r.fail(identifier, errors.New("empty host name"))
	}
	domain := domainHint
	if domain == "" {
		domain = rest
	}

	if res, ok := r.cache.get(host, domain); ok {
		r.logf("Resolved %s from cache: %s", identifier, res.Address)
		return res, nil
	}

	var (
		res Resolution
		err error
	)
	if domain != "" {
		res, err = r.resolveDNS(ctx, host, domain)
	} else {
		res, err = r.resolveNetBIOS(ctx, host)
	}
	if err != nil {
		return Resolution{}, r.fail(identifier, err)
	}
	r.cache.put(host, domain, res)
	return res, nil
}

func (r *AddressResolver) resolveDNS(ctx context.Context, host, domain string) (Resolution, error) {
	if r.DNS == nil {
		return Resolution{}, errors.New("no DNS resolver configured")
	}
	fqdn := host + "." + domain
	addrs, err := r.DNS.LookupHost(ctx, fqdn)
	if err != nil {
		return Resolution{}, err
	}
	for _, a := range addrs {
		addr, err := netip.ParseAddr(a)
		if err != nil || !addr.Is4() {
			continue
		}
		r.logf("Resolved %s via DNS: %s", fqdn, addr)
		return Resolution{Address: addr, Host: host, Domain: domain, Method: MethodDNS}, nil
	}
	return Resolution{}, fmt.Errorf("no IPv4 address for %s", fqdn)
}

func (r *AddressResolver) resolveNetBIOS(ctx context.Context, host string) (Resolution, error) {
	if r.NetBIOS == nil {
		return Resolution{}, errors.New("no NetBIOS resolver configured")
	}
	types := r.NameTypes
	if len(types) == 0 {
		types = netbios.DefaultNameTypes
	}

	var errs []error
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return Resolution{}, err
		}
		addr, err := r.NetBIOS.Resolve(ctx, host, t)
		if err == nil && addr.Is4() {
			r.logf("Resolved %s<%02X> via NetBIOS: %s", host, byte(t), addr)
			return Resolution{Address: addr, Host: host, Method: MethodNetBIOS}, nil
		}
		if err == nil {
			err = fmt.Errorf("%s<%02X>: not an IPv4 address: %s", host, byte(t), addr)
		}
		errs = append(errs, err)
	}
	return Resolution{}, fmt.Errorf("NetBIOS name types exhausted: %w", errors.Join(errs...))
}

// FlushCache drops every cached resolution.
func (r *AddressResolver) FlushCache() {
	r.cache.invalidateAll()
}

func (r *AddressResolver) fail(identifier string, err error) error {
	return &OpError{Kind: ErrResolution, Op: "resolve", Server: identifier, Err: err}
}

func (r *AddressResolver) logf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	}
}
