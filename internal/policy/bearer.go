// Package policy holds the pure delivery-eligibility decisions: which
// bearer and network a push may require, and whether its delivery
// window is open.
package policy

// Bearer and network types form closed enumerations (WDP appendix C);
// a value outside them rejects the push outright.
var bearers = []string{
	"Any",
	"SMS",
	"CSD",
	"GPRS",
	"Packet Data",
	"CDPD",
}

var networks = []string{
	"Any",
	"GSM",
	"IS-95 CDMA",
	"ANSI-136",
	"AMPS",
	"PDC",
	"IDEN",
	"PHS",
	"TETRA",
}

// BearerSpec is the transport requirement of one push submission.
type BearerSpec struct {
	BearerRequired  bool
	Bearer          string
	NetworkRequired bool
	Network         string
}

func knownValue(table []string, value string) bool {
	for _, v := range table {
		if v == value {
			return true
		}
	}
	return false
}

// SMSRequested reports whether the spec pins delivery to WAP over SMS.
func SMSRequested(spec BearerSpec) bool {
	return spec.BearerRequired && spec.Bearer == "SMS" &&
		spec.NetworkRequired && spec.Network == "GSM"
}

// SelectBearerNetwork validates the transport requirement and decides
// what to do with it. IP bearers are the default and need no pinning,
// so any recognized requirement other than SMS over GSM is cleared
// entirely; SMS over GSM is kept, which later lets the username and
// password ride along to the short-message service. An unrecognized
// bearer or network rejects the push.
func SelectBearerNetwork(spec BearerSpec) (BearerSpec, bool) {
	if !spec.BearerRequired || !spec.NetworkRequired {
		return spec, true
	}

	if !knownValue(bearers, spec.Bearer) || !knownValue(networks, spec.Network) {
		return spec, false
	}

	if !SMSRequested(spec) {
		return BearerSpec{}, true
	}

	return spec, true
}
