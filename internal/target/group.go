package target

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"strings"
)

const defaultPort = 80

// Resolver maps a hostname to its IPv4 addresses. Injected in tests;
// production code uses the net package resolver.
type Resolver func(host string) ([]string, error)

func defaultResolver(host string) ([]string, error) {
	ips, err := net.DefaultResolver.LookupIP(context.Background(), "ip4", host)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}

	return addrs, nil
}

// Group is a named pool of targets. Membership is fixed at construction:
// there is no dynamic add/remove and no health-based eviction.
type Group struct {
	name            string
	targets         []*Target
	weights         map[string]int
	weightsProvided bool
}

// NewGroup parses a comma-delimited specification string of
// host[:port][/base-uri] entries into a target group. Malformed entries
// and unresolvable hostnames are dropped rather than failing the group;
// an empty group is a valid result.
func NewGroup(name string, targetsStr string, weights map[string]int) *Group {
	return NewGroupWithResolver(name, targetsStr, weights, defaultResolver)
}

// NewGroupWithResolver is NewGroup with an explicit DNS resolver.
func NewGroupWithResolver(name string, targetsStr string, weights map[string]int, resolve Resolver) *Group {
	g := &Group{
		name:            name,
		weights:         weights,
		weightsProvided: weights != nil,
	}

	if g.weights == nil {
		g.weights = map[string]int{}
	}

	g.targets = parseTargets(name, targetsStr, resolve)

	return g
}

// Name returns the group's unique identifier. It also keys the
// balancer's round-robin state.
func (g *Group) Name() string {
	return g.name
}

// Targets returns the candidate list in parse order. The slice must not
// be mutated by callers.
func (g *Group) Targets() []*Target {
	return g.targets
}

// Weight returns the configured weight for a hostname, or 1 when the
// hostname has no entry.
func (g *Group) Weight(hostname string) int {
	if w, ok := g.weights[hostname]; ok {
		return w
	}

	return 1
}

// WeightedTargets expands the candidate list by per-hostname weight: a
// hostname with weight w contributes w copies of each of its resolved
// targets, grouped per hostname in encounter order. When the group was
// constructed without a weights map the expansion is empty, which is
// distinct from "every weight is 1" and disables weighted selection.
func (g *Group) WeightedTargets() []*Target {
	if !g.weightsProvided {
		return nil
	}

	var order []string
	byHost := make(map[string][]*Target)

	for _, t := range g.targets {
		host := t.Hostname()
		if host == "" {
			host = t.IP()
		}

		if _, seen := byHost[host]; !seen {
			order = append(order, host)
		}
		byHost[host] = append(byHost[host], t)
	}

	var expanded []*Target
	for _, host := range order {
		for i := 0; i < g.Weight(host); i++ {
			expanded = append(expanded, byHost[host]...)
		}
	}

	return expanded
}

func parseTargets(group string, targetsStr string, resolve Resolver) []*Target {
	var targets []*Target

	for _, spec := range strings.Split(targetsStr, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		addressPart := spec
		baseURI := "/"

		// The first slash separates the address from the base URI.
		if idx := strings.Index(spec, "/"); idx != -1 {
			addressPart = spec[:idx]
			if rest := spec[idx+1:]; rest != "" {
				baseURI = "/" + rest
			}
		}

		host := addressPart
		port := defaultPort

		// Last colon wins, so a port always follows the final colon.
		if idx := strings.LastIndex(addressPart, ":"); idx != -1 {
			p, err := strconv.Atoi(addressPart[idx+1:])
			if err != nil {
				slog.Warn("dropping target entry with invalid port",
					slog.String("group", group),
					slog.String("entry", spec))
				continue
			}

			host = addressPart[:idx]
			port = p
		}

		for _, ip := range resolveHost(host, resolve) {
			targets = append(targets, NewTarget(ip, port, baseURI, hostnameFor(host, ip)))
		}
	}

	return targets
}

// hostnameFor keeps the original hostname on a target only when the
// entry actually required resolution. Address literals carry no
// hostname annotation.
func hostnameFor(host, ip string) string {
	if host == ip {
		return ""
	}

	return host
}

func resolveHost(host string, resolve Resolver) []string {
	if ip := net.ParseIP(host); ip != nil && ip.To4() != nil {
		return []string{host}
	}

	addrs, err := resolve(host)
	if err != nil {
		slog.Warn("dropping unresolvable target host",
			slog.String("host", host),
			slog.String("error", err.Error()))
		return nil
	}

	seen := make(map[string]bool, len(addrs))
	unique := addrs[:0]

	for _, addr := range addrs {
		if seen[addr] {
			continue
		}

		seen[addr] = true
		unique = append(unique, addr)
	}

	return unique
}
