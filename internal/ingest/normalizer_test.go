package ingest

import (
	"testing"

	"github.com/priyadarshini/finadvisor/internal/domain"
)

func TestNormalizeCreditCards(t *testing.T) {
	payload := []byte(`[
		{
			"name": "  Voyager   Card ",
			"issuer": "Northgate Bank",
			"apr": 18.5,
			"annualFee": 499,
			"features": ["lounge access", "fuel surcharge waiver"],
			"minIncome": 40000,
			"minCreditScore": 700,
			"minCreditLimit": 50000,
			"maxCreditLimit": 300000,
			"rewardRate": 1.5
		}
	]`)

	products, err := Normalize(KindCreditCards, payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	p := products[0]
	if p.Type != domain.ProductTypeCreditCard {
		t.Fatalf("unexpected type %q", p.Type)
	}
	if p.Name != "Voyager Card" {
		t.Fatalf("whitespace not collapsed, got %q", p.Name)
	}
	if p.Provider != "Northgate Bank" {
		t.Fatalf("issuer must map to provider, got %q", p.Provider)
	}
	if p.InterestRate == nil || *p.InterestRate != 18.5 {
		t.Fatalf("apr must map to interestRate, got %v", p.InterestRate)
	}
	if p.Eligibility.MinCreditScore == nil || *p.Eligibility.MinCreditScore != 700 {
		t.Fatalf("eligibility not mapped, got %+v", p.Eligibility)
	}
	if p.Card == nil || p.Card.MaxCreditLimit != 300000 || p.Card.RewardRate != 1.5 {
		t.Fatalf("card terms not mapped, got %+v", p.Card)
	}
}

func TestNormalizeInsurance(t *testing.T) {
	payload := []byte(`[
		{
			"policyName": "Term Shield Plus",
			"provider": "Aegis Life",
			"sumAssured": 5000000,
			"premium": 12000,
			"coverage": "Term life with accidental rider",
			"exclusions": ["pre-existing conditions", "adventure sports"]
		}
	]`)

	products, err := Normalize(KindInsurance, payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	p := products[0]
	if p.Type != domain.ProductTypeInsurance {
		t.Fatalf("unexpected type %q", p.Type)
	}
	if p.Name != "Term Shield Plus" {
		t.Fatalf("policyName must map to name, got %q", p.Name)
	}
	if p.Insurance == nil {
		t.Fatal("expected insurance coverage")
	}
	if p.Insurance.SumAssured != 5000000 || p.Insurance.Premium != 12000 {
		t.Fatalf("coverage amounts not mapped, got %+v", p.Insurance)
	}
	if len(p.Insurance.Exclusions) != 2 {
		t.Fatalf("exclusions not mapped, got %v", p.Insurance.Exclusions)
	}
}

func TestNormalizeLoans(t *testing.T) {
	payload := []byte(`[
		{
			"name": "Flexi Loan",
			"lender": "Meridian Bank",
			"interestRate": 11.25,
			"processingFees": 999,
			"minAmount": 50000,
			"maxAmount": 1500000,
			"minTenure": 12,
			"maxTenure": 60
		}
	]`)

	products, err := Normalize(KindLoans, payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	p := products[0]
	if p.Type != domain.ProductTypePersonalLoan {
		t.Fatalf("unexpected type %q", p.Type)
	}
	if p.Provider != "Meridian Bank" {
		t.Fatalf("lender must map to provider, got %q", p.Provider)
	}
	if p.ProcessingFees == nil || *p.ProcessingFees != 999 {
		t.Fatalf("processing fees not mapped, got %v", p.ProcessingFees)
	}
	if p.Loan == nil || p.Loan.MaxAmount != 1500000 || p.Loan.MaxTenure != 60 {
		t.Fatalf("loan terms not mapped, got %+v", p.Loan)
	}
}

func TestNormalizeSkipsEntriesWithoutIdentity(t *testing.T) {
	payload := []byte(`[
		{"name": "", "lender": "Meridian Bank", "minAmount": 1, "maxAmount": 2, "minTenure": 1, "maxTenure": 2},
		{"name": "Valid Loan", "lender": "  ", "minAmount": 1, "maxAmount": 2, "minTenure": 1, "maxTenure": 2},
		{"name": "Kept Loan", "lender": "Meridian Bank", "minAmount": 1, "maxAmount": 2, "minTenure": 1, "maxTenure": 2}
	]`)

	products, err := Normalize(KindLoans, payload)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(products) != 1 || products[0].Name != "Kept Loan" {
		t.Fatalf("expected only the complete entry to survive, got %+v", products)
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	if _, err := Normalize("mortgages", []byte(`[]`)); err == nil {
		t.Fatal("expected an error for an unknown source kind")
	}
}

func TestNormalizeMalformedPayload(t *testing.T) {
	if _, err := Normalize(KindLoans, []byte(`{"not":"an array"`)); err == nil {
		t.Fatal("expected an error for a malformed payload")
	}
}
