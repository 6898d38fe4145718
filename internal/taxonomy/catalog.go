// Package taxonomy holds the clause anchor catalog and its pre-encoded vectors.
package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lawlens/internal/model"
)

// Entry pairs a clause type with the exemplar sentences that define it.
type Entry struct {
	Type    model.ClauseType
	Anchors []string
}

// DefaultCatalog returns the built-in catalog in clause-type order.
// Each call returns a fresh copy.
func DefaultCatalog() []Entry {
	out := make([]Entry, len(defaultCatalog))
	for i, e := range defaultCatalog {
		out[i] = Entry{Type: e.Type, Anchors: append([]string(nil), e.Anchors...)}
	}
	return out
}

var defaultCatalog = []Entry{
	{model.ClauseConfidentiality, []string{
		"The parties agree to keep all information confidential and not disclose it to third parties.",
		"Recipient shall not disclose the Disclosing Party’s Confidential Information.",
		"This Non-Disclosure Agreement shall govern the exchange of proprietary information.",
	}},
	{model.ClauseTermination, []string{
		"This agreement may be terminated by either party with 30 days written notice.",
		"This Agreement shall terminate automatically upon the expiration of the term.",
		"Either party may terminate this agreement for cause immediately upon written notice.",
	}},
	{model.ClauseIndemnification, []string{
		"The Service Provider agrees to indemnify and hold harmless the Client from any claims.",
		"Each party shall indemnify the other against any losses, damages, or liabilities.",
		"Client agrees to indemnify Provider against all claims arising from Client's use of services.",
	}},
	{model.ClauseGoverningLaw, []string{
		"This Agreement shall be governed by and construed in accordance with the laws of India.",
		"Any disputes arising under this agreement shall be resolved in the courts of New York.",
		"The laws of the State of California shall govern the validity and interpretation of this Agreement.",
	}},
	{model.ClausePaymentTerms, []string{
		"Client shall pay Provider the fees set forth in the attached Statement of Work.",
		"Invoices are due and payable within 30 days of receipt.",
		"All payments shall be made in US Dollars via wire transfer.",
	}},
	{model.ClauseLiability, []string{
		"In no event shall either party be liable for any indirect, special, or consequential damages.",
		"The total liability of the Service Provider shall not exceed the fees paid by the Client.",
		"Limitation of Liability: Neither party shall be liable for lost profits.",
	}},
	{model.ClauseNonCompete, []string{
		"Employee agrees not to compete with the Company for a period of 12 months following termination.",
		"During the term of this Agreement and for a period of one year thereafter, Employee shall not engage in any business competing with the Company.",
		"Employee shall not solicit any customers or employees of the Company.",
	}},
	{model.ClauseSeverance, []string{
		"In the event of termination without cause, Employee shall be entitled to severance pay.",
		"Company shall pay Employee a lump sum equal to three months of base salary.",
		"Severance package includes continuation of benefits for a period of 3 months.",
	}},
	{model.ClauseIPAssignment, []string{
		"All work product created during employment shall be the exclusive property of the Company.",
		"Employee hereby assigns to Company all rights, title, and interest in any Intellectual Property.",
		"Company shall own all inventions, discoveries, and improvements made by Employee.",
	}},
	{model.ClauseDisputeResolution, []string{
		"Any dispute arising out of or in connection with this agreement shall be resolved by arbitration.",
		"The parties agree to submit any disputes to binding arbitration.",
		"All disputes shall be settled by arbitration in accordance with the rules of the American Arbitration Association.",
	}},
	{model.ClauseForceMajeure, []string{
		"Neither party shall be liable for any failure to perform due to causes beyond their reasonable control.",
		"Force majeure events include acts of God, war, or natural disasters.",
		"Performance shall be excused during the period of force majeure.",
	}},
	{model.ClauseAssignment, []string{
		"Neither party may assign this agreement without the prior written consent of the other party.",
		"This agreement may not be assigned by either party without written approval.",
		"No assignment of this agreement shall be valid unless in writing and signed by both parties.",
	}},
	{model.ClauseNotices, []string{
		"All notices required under this agreement shall be in writing and delivered to the addresses specified.",
		"Notice shall be deemed given when delivered personally or sent by certified mail.",
		"Any notice under this agreement must be in writing.",
	}},
	{model.ClauseEntireAgreement, []string{
		"This agreement constitutes the entire agreement between the parties.",
		"This document supersedes all prior agreements and understandings.",
		"No other agreements, promises, or representations shall be binding.",
	}},
	{model.ClauseAmendment, []string{
		"This agreement may only be amended in writing signed by both parties.",
		"No amendment to this agreement shall be effective unless in writing.",
		"Any changes to this agreement must be made in writing.",
	}},
	{model.ClauseWaiver, []string{
		"No waiver of any provision of this agreement shall be effective unless in writing.",
		"Failure to enforce any provision shall not constitute a waiver.",
		"A waiver of any breach shall not be deemed a waiver of any subsequent breach.",
	}},
	{model.ClauseOther, []string{
		"This clause does not fit any specific category.",
		"Miscellaneous provisions apply.",
		"Any other terms and conditions not covered above.",
	}},
}

// Validate checks that every entry names a known type once and has at least one anchor.
func Validate(catalog []Entry) error {
	if len(catalog) == 0 {
		return fmt.Errorf("catalog is empty")
	}
	seen := make(map[model.ClauseType]bool, len(catalog))
	for _, e := range catalog {
		if !e.Type.Valid() {
			return fmt.Errorf("catalog: invalid clause type %d", e.Type)
		}
		if seen[e.Type] {
			return fmt.Errorf("catalog: duplicate entry for %s", e.Type)
		}
		seen[e.Type] = true
		if len(e.Anchors) == 0 {
			return fmt.Errorf("catalog: %s has no anchors", e.Type)
		}
	}
	return nil
}

// catalogFile is the YAML shape accepted by LoadCatalog:
//
//	Confidentiality:
//	  - "The parties agree to keep all information confidential..."
type catalogFile map[string][]string

// LoadCatalog reads anchor overrides from a YAML file. Types listed in the
// file replace the default anchors; unlisted types keep theirs.
func LoadCatalog(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	overrides := make(map[model.ClauseType][]string, len(file))
	for name, anchors := range file {
		t, ok := model.ParseClauseType(name)
		if !ok {
			return nil, fmt.Errorf("catalog: unknown clause type %q", name)
		}
		overrides[t] = anchors
	}

	catalog := DefaultCatalog()
	for i := range catalog {
		if anchors, ok := overrides[catalog[i].Type]; ok {
			catalog[i].Anchors = anchors
		}
	}
	if err := Validate(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}
