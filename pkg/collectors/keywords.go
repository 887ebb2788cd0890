package collectors

// discoveryKeywords is the spec §4.3 keyword set NewsEventsCollector
// and WebSearchCollector both query with.
var discoveryKeywords = []string{
	"data breach", "ransomware", "malware", "cyber attack", "phishing",
	"ddos", "credential theft", "hack", "vulnerability", "exploit",
}

// discoveryExclusions are topics that share vocabulary with cyber
// incident reporting but are not cyber incidents.
var discoveryExclusions = []string{
	"fireworks", "celebrations", "sports", "elections",
}

// eventCodeToIncidentType maps a CAMEO-style provider event code to
// the internal incident-type enum, per spec §4.3's "deterministic
// table" requirement for NewsEventsCollector.
var eventCodeToIncidentType = map[string]string{
	"1831": "Cyberattack",
	"1832": "DataBreach",
	"1833": "Ransomware",
	"0871": "Investigation",
	"0874": "Disclosure",
}

// IncidentTypeForEventCode resolves code to an internal incident type,
// defaulting to "Cyberattack" for any code outside the known table so
// a collector never drops a hit purely for an unrecognised code.
func IncidentTypeForEventCode(code string) string {
	if t, ok := eventCodeToIncidentType[code]; ok {
		return t
	}
	return "Cyberattack"
}

// australianTLDs are the top-level domains WebSearchCollector uses to
// decide that a hit is Australia-relevant; a hit with neither a TLD
// nor a keyword signal is dropped.
var australianTLDs = []string{".au", ".com.au", ".gov.au", ".org.au", ".net.au", ".edu.au"}

// australianKeywords are country-name/place mentions used alongside
// australianTLDs for the same purpose.
var australianKeywords = []string{
	"australia", "australian", "sydney", "melbourne", "brisbane", "perth",
	"adelaide", "canberra", "nsw", "victoria", "queensland",
}
