package manifest

import (
	"sort"
	"strings"

	"github.com/arthur-debert/dotfold/pkg/paths"
	"github.com/arthur-debert/dotfold/pkg/types"
)

// Claim is one manifest entry in normalized form: a logical path, the
// kind of node it claims, and the tier that claims it.
type Claim struct {
	// Path is the logical path with no trailing separator. The empty
	// string is the common tier's whole-home claim.
	Path string

	// Kind is KindDir when the raw entry carried a trailing "/" (or is
	// the whole-home claim), KindFile otherwise
	Kind types.Kind

	// Tier is the claiming tier: common, system, or a host name
	Tier string
}

// ClaimsAll reports whether this is the whole-home claim.
func (c Claim) ClaimsAll() bool {
	return c.Path == ""
}

// Contains reports whether logical falls under this claim. A file claim
// contains only itself; a directory claim contains itself and every
// descendant; the whole-home claim contains every relative logical path.
func (c Claim) Contains(logical string) bool {
	if c.ClaimsAll() {
		return logical != "" && !strings.HasPrefix(logical, "/")
	}
	if logical == c.Path {
		return true
	}
	if c.Kind != types.KindDir {
		return false
	}
	return strings.HasPrefix(logical, c.Path+"/")
}

// parseClaim normalizes one raw manifest entry. A trailing "/" marks a
// directory claim and is stripped from the stored path.
func parseClaim(tier, entry string) Claim {
	if entry == "" {
		return Claim{Path: "", Kind: types.KindDir, Tier: tier}
	}
	if strings.HasSuffix(entry, "/") {
		return Claim{
			Path: strings.TrimSuffix(entry, "/"),
			Kind: types.KindDir,
			Tier: tier,
		}
	}
	return Claim{Path: entry, Kind: types.KindFile, Tier: tier}
}

func parseClaims(tier string, entries []string) []Claim {
	claims := make([]Claim, 0, len(entries))
	for _, entry := range entries {
		claims = append(claims, parseClaim(tier, entry))
	}
	return claims
}

// CommonClaims returns the common tier's claims in manifest order.
func (m *Manifest) CommonClaims() []Claim {
	return parseClaims(paths.CommonTier, m.Common)
}

// HostClaims returns the claims of one host tier. Hosts absent from the
// manifest have no claims.
func (m *Manifest) HostClaims(host string) []Claim {
	return parseClaims(host, m.Hosts[host])
}

// SystemClaims returns the system tier's absolute-path claims.
func (m *Manifest) SystemClaims() []Claim {
	return parseClaims(paths.SystemTier, m.System)
}

// ClaimsFor returns every claim relevant to one host: common, that
// host's overrides, and system. Other hosts' tiers are inert.
func (m *Manifest) ClaimsFor(host string) []Claim {
	claims := m.CommonClaims()
	claims = append(claims, m.HostClaims(host)...)
	claims = append(claims, m.SystemClaims()...)
	return claims
}

// HostNames returns the host tier names present in the manifest, sorted.
func (m *Manifest) HostNames() []string {
	names := make([]string, 0, len(m.Hosts))
	for name := range m.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasHost reports whether the manifest defines a tier for host.
func (m *Manifest) HasHost(host string) bool {
	_, ok := m.Hosts[host]
	return ok
}
