package collectors

import "testing"

func TestDiscoveryGateAcceptsClearCyberTitle(t *testing.T) {
	ok := DiscoveryGate("Optus confirms data breach affecting millions", "The telco disclosed a ransomware-adjacent incident.")
	if !ok {
		t.Fatal("expected discovery gate to accept a clear cyber incident title")
	}
}

func TestDiscoveryGateRejectsTextWithoutKeywords(t *testing.T) {
	ok := DiscoveryGate("Local council opens new library", "Residents welcomed the new facility.")
	if ok {
		t.Fatal("expected discovery gate to reject text with no cyber keywords")
	}
}

func TestDiscoveryGateRejectsNoiseEvenWithWeakMatch(t *testing.T) {
	ok := DiscoveryGate("Grand final hack: fans share their best life hack", "A fun life hack for footy fans before the grand final.")
	if ok {
		t.Fatal("expected discovery gate to reject noise despite a weak keyword match")
	}
}

func TestPostScrapeGateRequiresMultipleKeywordHits(t *testing.T) {
	single := "The company suffered a data breach last week."
	if PostScrapeGate(single) {
		t.Fatal("expected post-scrape gate to reject text with only one keyword hit")
	}

	multi := "The company suffered a data breach last week. Ransomware operators claimed credit and leaked stolen data online."
	if !PostScrapeGate(multi) {
		t.Fatal("expected post-scrape gate to accept text with multiple keyword hits")
	}
}
