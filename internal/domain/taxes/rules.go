// Package taxes decides the tax treatment of a document from the fiscal
// profiles of its company and counterparty. The decision rules are CEL
// expressions so tenants can override them without a code change.
package taxes

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultIntraCommunityRule is the built-in rule: a cross-border supply
// between two EU members where the counterparty holds a VAT registration
// is an intra-community operation (tax amount suppressed).
const DefaultIntraCommunityRule = `company_country != counterparty_country ` +
	`&& company_in_eu && counterparty_in_eu && vat_registered`

// DefaultExemptRule is the built-in exemption rule: exports outside the
// EU are exempt from tax entirely.
const DefaultExemptRule = `company_in_eu && !counterparty_in_eu ` +
	`&& counterparty_country != ""`

// euMembers is the ISO 3166-1 alpha-2 set of EU member states.
var euMembers = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true,
	"CZ": true, "DK": true, "EE": true, "FI": true, "FR": true,
	"DE": true, "GR": true, "HU": true, "IE": true, "IT": true,
	"LV": true, "LT": true, "LU": true, "MT": true, "NL": true,
	"PL": true, "PT": true, "RO": true, "SK": true, "SI": true,
	"ES": true, "SE": true,
}

// IsEUMember reports whether the country code is an EU member state.
func IsEUMember(country string) bool {
	return euMembers[country]
}

// Input carries the facts a rule evaluates over.
type Input struct {
	CompanyCountry      string
	CounterpartyCountry string
	VATRegistered       bool
	SubjectType         string
}

// RuleSet holds compiled tax-treatment rules.
type RuleSet struct {
	intraCommunity cel.Program
	exempt         cel.Program
}

// NewRuleSet compiles the given CEL expressions. Empty expressions fall
// back to the built-in defaults.
func NewRuleSet(intraCommunityExpr, exemptExpr string) (*RuleSet, error) {
	env, err := cel.NewEnv(
		cel.Variable("company_country", cel.StringType),
		cel.Variable("counterparty_country", cel.StringType),
		cel.Variable("company_in_eu", cel.BoolType),
		cel.Variable("counterparty_in_eu", cel.BoolType),
		cel.Variable("vat_registered", cel.BoolType),
		cel.Variable("subject_type", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}

	if intraCommunityExpr == "" {
		intraCommunityExpr = DefaultIntraCommunityRule
	}
	if exemptExpr == "" {
		exemptExpr = DefaultExemptRule
	}

	intra, err := compileBool(env, intraCommunityExpr)
	if err != nil {
		return nil, fmt.Errorf("intra-community rule: %w", err)
	}
	exempt, err := compileBool(env, exemptExpr)
	if err != nil {
		return nil, fmt.Errorf("exemption rule: %w", err)
	}

	return &RuleSet{intraCommunity: intra, exempt: exempt}, nil
}

// MustDefault returns the built-in rule set. The default expressions are
// constants; failing to compile them is a programming error.
func MustDefault() *RuleSet {
	rs, err := NewRuleSet("", "")
	if err != nil {
		panic("compile default tax rules: " + err.Error())
	}
	return rs
}

func compileBool(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}
	return env.Program(ast)
}

// IntraCommunity reports whether the operation is intra-community:
// the nominal tax rate stays on the lines but the monetary tax amount
// is suppressed.
func (r *RuleSet) IntraCommunity(in Input) (bool, error) {
	return r.eval(r.intraCommunity, in)
}

// Exempt reports whether the operation is exempt from tax entirely.
func (r *RuleSet) Exempt(in Input) (bool, error) {
	return r.eval(r.exempt, in)
}

func (r *RuleSet) eval(prg cel.Program, in Input) (bool, error) {
	out, _, err := prg.Eval(map[string]any{
		"company_country":      in.CompanyCountry,
		"counterparty_country": in.CounterpartyCountry,
		"company_in_eu":        IsEUMember(in.CompanyCountry),
		"counterparty_in_eu":   IsEUMember(in.CounterpartyCountry),
		"vat_registered":       in.VATRegistered,
		"subject_type":         in.SubjectType,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate tax rule: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("tax rule returned %T, want bool", out.Value())
	}
	return result, nil
}
