package xsec

import "leptonweight.io/lw/particle"

// Tables names the differential and total tables of one process.
type Tables struct {
	Differential string
	Total        string
}

// StandardTables holds the deep-inelastic tables for neutrinos and
// antineutrinos, shared by all three flavours.
type StandardTables struct {
	NuCC, NuNC       Tables
	NuBarCC, NuBarNC Tables
}

type flavour struct {
	nu, lepton particle.Type
	anti       bool
}

var flavours = []flavour{
	{particle.NuE, particle.EMinus, false},
	{particle.NuMu, particle.MuMinus, false},
	{particle.NuTau, particle.TauMinus, false},
	{particle.NuEBar, particle.EPlus, true},
	{particle.NuMuBar, particle.MuPlus, true},
	{particle.NuTauBar, particle.TauPlus, true},
}

// StandardInteractions returns charged- and neutral-current deep-inelastic
// scattering for every neutrino flavour. Charged current produces the
// flavour's charged lepton and a hadronic shower, neutral current the
// neutrino itself and a hadronic shower.
func StandardInteractions(t StandardTables) *Set {
	var list []Interaction
	for _, f := range flavours {
		cc, nc := t.NuCC, t.NuNC
		if f.anti {
			cc, nc = t.NuBarCC, t.NuBarNC
		}
		list = append(list,
			NewInteraction("CC", f.nu, [2]particle.Type{f.lepton, particle.Hadrons}, cc.Differential, cc.Total),
			NewInteraction("NC", f.nu, [2]particle.Type{f.nu, particle.Hadrons}, nc.Differential, nc.Total),
		)
	}
	return MustNewSet(list...)
}
