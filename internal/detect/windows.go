package detect

import (
	"strings"

	"github.com/bootmend/bootmend/internal/system"
)

// windowsSignature pairs a probe with the edition label it proves.
type windowsSignature struct {
	label string
	match func(p *windowsProbe) bool
}

// windowsSignatures is evaluated in order, oldest edition first; the first
// matching signature wins. Adding a new edition is a table change, not a
// control-flow change.
var windowsSignatures = []windowsSignature{
	{"Windows 95/98/ME", func(p *windowsProbe) bool {
		return p.hasFile("/COMMAND.COM") && p.hasFile("/IO.SYS")
	}},
	{"Windows XP", func(p *windowsProbe) bool {
		return p.hasFile("/ntldr") && p.hasFile("/NTDETECT.COM")
	}},
	{"Windows Vista", func(p *windowsProbe) bool {
		return p.registryMentions("Windows Vista")
	}},
	{"Windows 7", func(p *windowsProbe) bool {
		return p.registryMentions("Windows 7")
	}},
	{"Windows 8/8.1", func(p *windowsProbe) bool {
		return p.registryMentions("Windows 8")
	}},
	{"Windows 10", func(p *windowsProbe) bool {
		return p.registryMentions("Windows 10")
	}},
}

// windowsProbe evaluates edition signatures against one mounted partition.
// NT-era editions are told apart by product names in the SOFTWARE registry
// hive, extracted with strings; the hive is read once and reused across
// signatures.
type windowsProbe struct {
	scanner    *Scanner
	mountPoint string

	registry       string
	registryLoaded bool
}

func (p *windowsProbe) hasFile(relative string) bool {
	return p.scanner.exists(p.mountPoint + relative)
}

func (p *windowsProbe) registryMentions(product string) bool {
	if !p.registryLoaded {
		p.registryLoaded = true
		res := p.scanner.Run.Run("strings "+p.mountPoint+"/Windows/System32/config/SOFTWARE",
			system.Options{Privileged: true, CaptureOutput: true})
		if res.ExitCode == 0 {
			p.registry = res.Output
		}
	}
	return strings.Contains(p.registry, product)
}

// windowsEdition classifies the Windows installation under mountPoint,
// defaulting to plain "Windows" when no signature matches.
func (s *Scanner) windowsEdition(mountPoint string) string {
	probe := &windowsProbe{scanner: s, mountPoint: mountPoint}
	for _, sig := range windowsSignatures {
		if sig.match(probe) {
			return sig.label
		}
	}
	return "Windows"
}
