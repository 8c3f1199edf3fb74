package report

import (
	"fmt"

	"github.com/JaimeStill/crediscope/internal/claims"
	"github.com/JaimeStill/crediscope/internal/providers"
	"github.com/JaimeStill/crediscope/internal/reasoning"
)

var templates = map[claims.DomainClass][]ChecklistItem{
	claims.Medical: {
		{
			Point:       "Find the official health guidance",
			Explanation: "Look up what the WHO, your national health ministry, or the drug regulator has published on this topic.",
		},
		{
			Point:       "Look for peer-reviewed research",
			Explanation: "Medical claims should rest on studies in reputable journals, not on testimonials or forwarded messages.",
		},
		{
			Point:       "Check whether the mechanism is plausible",
			Explanation: "Ask whether what is described is biologically possible and consistent with established medicine.",
		},
		{
			Point:       "Confirm with more than one health authority",
			Explanation: "Independent agencies and medical associations agreeing is stronger evidence than a single source.",
		},
	},
	claims.Political: {
		{
			Point:       "Check the official record",
			Explanation: "Election results, laws, and statements are published by the Election Commission and government portals.",
		},
		{
			Point:       "Compare several news organizations",
			Explanation: "Look for the same story in established outlets with different editorial lines.",
		},
		{
			Point:       "Look for the original statement",
			Explanation: "Quotes are often clipped or invented. Find the full speech, press release, or transcript.",
		},
		{
			Point:       "Ask who benefits",
			Explanation: "Consider the motives of whoever is spreading the claim and their record for accuracy.",
		},
	},
	claims.Technology: {
		{
			Point:       "Check what the technology can actually do",
			Explanation: "Research the power, size, range, and connectivity the claim would require.",
		},
		{
			Point:       "Ask technical experts",
			Explanation: "Engineering departments, technical universities, and national cyber security agencies publish explainers.",
		},
		{
			Point:       "Look for independent testing",
			Explanation: "Laboratory measurements and technical audits carry more weight than demonstrations in videos.",
		},
		{
			Point:       "Compare with existing capabilities",
			Explanation: "Claims far beyond what current products can do deserve extra scrutiny.",
		},
	},
	claims.General: {
		{
			Point:       "Find independent confirmation",
			Explanation: "Check at least three credible sources that do not simply repeat each other.",
		},
		{
			Point:       "Evaluate the source",
			Explanation: "Look at who published the claim, their expertise, and their record for accuracy.",
		},
		{
			Point:       "Look for primary evidence",
			Explanation: "Prefer original documents, data, and firsthand accounts over summaries and screenshots.",
		},
		{
			Point:       "Check the date and context",
			Explanation: "Old stories and images are often recirculated as if they were new.",
		},
	},
}

var institutions = map[claims.DomainClass]string{
	claims.Medical:    "the WHO or your national health ministry",
	claims.Political:  "the Election Commission or official government portals",
	claims.Technology: "CERT-In or a technical university",
	claims.General:    "PIB Fact Check or an established fact-checking organization",
}

// Checklist builds the ordered verification steps for in. A detected URL
// threat leads; the domain template follows, then steps for the content kind,
// then one step per evidence gap.
func Checklist(
	in claims.Input,
	outcomes []providers.Outcome,
	evidence []providers.EvidenceItem,
	syn reasoning.Synthesis,
) []ChecklistItem {
	var items []ChecklistItem

	if t := threatOf(outcomes); t != nil {
		items = append(items, ChecklistItem{
			Point:       "Do not open this link",
			Explanation: fmt.Sprintf("A URL safety screen flagged it as %s. Do not enter passwords or download anything from it.", threatName(t.Type)),
		})
	}

	domain := in.Domain
	if _, ok := templates[domain]; !ok {
		domain = claims.General
	}
	items = append(items, templates[domain]...)
	items = append(items, kindItems(in.Kind)...)
	items = append(items, gaps(domain, outcomes, evidence, syn)...)

	return items
}

func kindItems(kind claims.Kind) []ChecklistItem {
	switch kind {
	case claims.KindURL:
		return []ChecklistItem{{
			Point:       "Inspect the web address",
			Explanation: "Look for misspelled brand names, unusual domains, and shortened links that hide the destination.",
		}}
	case claims.KindImageText:
		return []ChecklistItem{{
			Point:       "Run a reverse image search",
			Explanation: "Images are often reused from unrelated events. Search for earlier copies and their original captions.",
		}}
	default:
		return nil
	}
}

func gaps(
	domain claims.DomainClass,
	outcomes []providers.Outcome,
	evidence []providers.EvidenceItem,
	syn reasoning.Synthesis,
) []ChecklistItem {
	var items []ChecklistItem

	for _, o := range outcomes {
		switch o.Provider {
		case providers.FactCheckLookup:
			switch {
			case o.Failed():
				items = append(items, ChecklistItem{
					Point:       "No official fact-check was available",
					Explanation: fmt.Sprintf("The fact-check search could not be reached. Cross-check with %s.", institutions[domain]),
				})
			case o.Available() && !hasCategory(evidence, providers.CategoryFactCheck):
				items = append(items, ChecklistItem{
					Point:       "No published fact-check found yet",
					Explanation: fmt.Sprintf("New claims are often unchecked. Cross-check with %s before sharing.", institutions[domain]),
				})
			}
		case providers.ToxicityScoring:
			if o.Failed() {
				items = append(items, ChecklistItem{
					Point:       "Read the wording critically",
					Explanation: "The language screen was unavailable. Watch for urgency, fear, and calls to forward the message.",
				})
			}
		case providers.URLSafety:
			if o.Failed() {
				items = append(items, ChecklistItem{
					Point:       "Treat the link as unscreened",
					Explanation: "The safety screen was unavailable, so this link has not been checked for malware or phishing.",
				})
			}
		}
	}

	if syn.Status != reasoning.StatusOK {
		items = append(items, ChecklistItem{
			Point:       "Automated reasoning was not available",
			Explanation: "This verdict rests on published evidence alone. Weigh it with your own research.",
		})
	}

	return items
}

func threatOf(outcomes []providers.Outcome) *providers.Threat {
	for _, o := range outcomes {
		if o.Available() && o.Signal.Threat != nil && o.Signal.Threat.Detected {
			return o.Signal.Threat
		}
	}
	return nil
}

func threatName(t string) string {
	switch t {
	case "MALWARE":
		return "malware"
	case "SOCIAL_ENGINEERING":
		return "phishing"
	case "UNWANTED_SOFTWARE":
		return "unwanted software"
	case "POTENTIALLY_HARMFUL_APPLICATION":
		return "a harmful application"
	default:
		return "unsafe"
	}
}

func hasCategory(items []providers.EvidenceItem, c providers.Category) bool {
	for _, item := range items {
		if item.Category == c {
			return true
		}
	}
	return false
}
