package validator_test

import (
	"testing"

	"github.com/resoltico/FTLLexEngine-sub005/ast"
	"github.com/resoltico/FTLLexEngine-sub005/diag"
	"github.com/resoltico/FTLLexEngine-sub005/parser"
	"github.com/resoltico/FTLLexEngine-sub005/validator"
)

func hasWarningCode(ws []diag.ValidationWarning, code diag.Code) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

func hasErrorCode(es []diag.ValidationError, code diag.Code) bool {
	for _, e := range es {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateDuplicateAttribute(t *testing.T) {
	src := "login-input =\n    .placeholder = email\n    .placeholder = again\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasWarningCode(result.Warnings, diag.CodeDuplicateAttribute) {
		t.Errorf("expected CodeDuplicateAttribute warning, got %+v", result.Warnings)
	}
}

func TestValidateDuplicateNamedArgument(t *testing.T) {
	src := "greeting = { NUMBER($n, minimumFractionDigits: 2, minimumFractionDigits: 3) }\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasErrorCode(result.Errors, diag.CodeDuplicateNamedArg) {
		t.Errorf("expected CodeDuplicateNamedArg error, got %+v", result.Errors)
	}
}

func TestValidateSelectExpressionDoubleCheck(t *testing.T) {
	// The parser itself never produces an invalid SelectExpression (it
	// recovers to Junk instead), so this exercises the validator's
	// standalone double-check against a hand-built AST.
	resource := &ast.Resource{
		Entries: []ast.Entry{
			&ast.Message{
				ID: ast.Identifier{Name: "empty-select"},
				Value: &ast.Pattern{Elements: []ast.PatternElement{
					ast.Placeable{Expression: ast.SelectExpression{
						Selector: ast.VariableReference{ID: ast.Identifier{Name: "n"}},
						Variants: nil,
					}},
				}},
			},
		},
	}
	result := validator.Validate("", resource)
	if !hasErrorCode(result.Errors, diag.CodeNoVariants) {
		t.Errorf("expected CodeNoVariants error, got %+v", result.Errors)
	}
}

func TestValidateSelectExpressionMissingDefault(t *testing.T) {
	resource := &ast.Resource{
		Entries: []ast.Entry{
			&ast.Message{
				ID: ast.Identifier{Name: "no-default"},
				Value: &ast.Pattern{Elements: []ast.PatternElement{
					ast.Placeable{Expression: ast.SelectExpression{
						Selector: ast.VariableReference{ID: ast.Identifier{Name: "n"}},
						Variants: []ast.Variant{
							{Key: ast.IdentifierKey{Identifier: ast.Identifier{Name: "one"}}, Default: false},
							{Key: ast.IdentifierKey{Identifier: ast.Identifier{Name: "other"}}, Default: false},
						},
					}},
				}},
			},
		},
	}
	result := validator.Validate("", resource)
	if !hasErrorCode(result.Errors, diag.CodeNoDefaultVariant) {
		t.Errorf("expected CodeNoDefaultVariant error, got %+v", result.Errors)
	}
}

func TestValidateUndefinedReference(t *testing.T) {
	src := "hello = Hi { missing-message }!\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasWarningCode(result.Warnings, diag.CodeUndefinedReference) {
		t.Errorf("expected CodeUndefinedReference warning, got %+v", result.Warnings)
	}
}

func TestValidateKnownIDsSuppressUndefinedReference(t *testing.T) {
	src := "hello = Hi { brand-name }!\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res, validator.WithKnownMessageIDs("brand-name"))
	if hasWarningCode(result.Warnings, diag.CodeUndefinedReference) {
		t.Errorf("did not expect CodeUndefinedReference, got %+v", result.Warnings)
	}
}

func TestValidateCrossResourceShadowing(t *testing.T) {
	src := "brand-name = Acme\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res, validator.WithKnownMessageIDs("brand-name"))
	if !hasWarningCode(result.Warnings, diag.CodeShadowedEntry) {
		t.Errorf("expected CodeShadowedEntry warning, got %+v", result.Warnings)
	}
}

func TestValidateSelfReference(t *testing.T) {
	src := "recursive = { recursive }\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasWarningCode(result.Warnings, diag.CodeSelfReference) {
		t.Errorf("expected CodeSelfReference warning, got %+v", result.Warnings)
	}
}

func TestValidateCyclicReference(t *testing.T) {
	src := "a = { b }\nb = { a }\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasWarningCode(result.Warnings, diag.CodeCyclicReference) {
		t.Errorf("expected CodeCyclicReference warning, got %+v", result.Warnings)
	}
}

func TestValidateChainTooDeep(t *testing.T) {
	src := "n0 = { n1 }\n"
	for i := 1; i < 10; i++ {
		src += "n" + itoa(i) + " = { n" + itoa(i+1) + " }\n"
	}
	src += "n10 = leaf\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res, validator.WithMaxChainDepth(3))
	if !hasWarningCode(result.Warnings, diag.CodeChainTooDeep) {
		t.Errorf("expected CodeChainTooDeep warning, got %+v", result.Warnings)
	}
}

func TestValidateValidResourceProducesNoDiagnostics(t *testing.T) {
	src := "-brand = Acme\nhello = Welcome to { -brand }!\n    .tooltip = { -brand } says hi\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !result.IsValid {
		t.Errorf("expected a valid resource, got errors %+v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", result.Warnings)
	}
}

func TestValidateTermReferenceArgumentsChecked(t *testing.T) {
	src := "-brand = Acme\ngreeting = { -brand(case: \"nominative\", case: \"genitive\") }\n"
	res := parser.Parse(src)
	result := validator.Validate(src, res)
	if !hasErrorCode(result.Errors, diag.CodeDuplicateNamedArg) {
		t.Errorf("expected CodeDuplicateNamedArg error from a term reference call, got %+v", result.Errors)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
